// Package msgdoc converts Outlook .msg email files to Markdown.
//
// A .msg file is an OLE compound document whose string properties live
// in streams named __substg1.0_<id><type>. The converter reads the
// subject, sender, recipient and body properties, takes the message
// date from the fixed-length property stream, and lists attachment
// names from their storages. The output is a metadata block followed
// by the message body; HTML bodies are converted through htmldoc.
package msgdoc

import (
	"context"
	"encoding/binary"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sort"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/richardlehane/mscfb"
	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/babissal/filetomd/htmldoc"
)

// MAPI property IDs (MS-OXPROPS).
const (
	propSubject         = 0x0037
	propSubmitTime      = 0x0039
	propSenderName      = 0x0C1A
	propDisplayCC       = 0x0E03
	propDisplayTo       = 0x0E04
	propDeliveryTime    = 0x0E06
	propBody            = 0x1000
	propHTMLBody        = 0x1013
	propAttachShortName = 0x3704
	propAttachLongName  = 0x3707
)

// MAPI property types.
const (
	typeSystime = 0x0040
	typeString8 = 0x001E
	typeUnicode = 0x001F
	typeBinary  = 0x0102
)

const (
	substgPrefix     = "__substg1.0_"
	propertiesStream = "__properties_version1.0"
	attachPrefix     = "__attach_version1.0_"
)

var utf16Decoder = unicode.UTF16(unicode.LittleEndian, unicode.IgnoreBOM)

// Config holds converter options.
type Config struct {
	// Logger receives debug output. Defaults to slog.Default().
	Logger *slog.Logger
}

func (c *Config) defaults() {
	if c.Logger == nil {
		c.Logger = slog.Default()
	}
}

// Converter converts .msg email files to Markdown.
type Converter struct {
	logger *slog.Logger
	html   *htmldoc.Converter
}

// New creates a Converter with the given configuration.
func New(cfg Config) *Converter {
	cfg.defaults()
	return &Converter{
		logger: cfg.Logger,
		html:   htmldoc.New(htmldoc.Config{Logger: cfg.Logger}),
	}
}

// Convert reads the message at path and returns its Markdown
// rendition.
func (c *Converter) Convert(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("failed to open msg file: %w", err)
	}
	defer f.Close()

	doc, err := mscfb.New(f)
	if err != nil {
		return "", fmt.Errorf("failed to read msg file: %w", err)
	}

	msg := collectMessage(doc)
	c.logger.Debug("converting message", "path", path, "attachments", len(msg.attachments))

	return c.render(msg), nil
}

// message holds the properties read from the compound file.
type message struct {
	subject     string
	sender      string
	to          string
	cc          string
	date        time.Time
	body        string
	htmlBody    string
	attachments []string
}

type attachmentProps struct {
	long  string
	short string
}

// collectMessage walks the directory entries and gathers the
// message-level properties plus the per-attachment filenames.
func collectMessage(doc *mscfb.Reader) *message {
	msg := &message{}
	attachments := make(map[string]*attachmentProps)
	var rawProps []byte

	for entry, err := doc.Next(); err == nil; entry, err = doc.Next() {
		switch {
		case len(entry.Path) == 0:
			if entry.Name == propertiesStream {
				rawProps = readStream(entry)
				continue
			}
			id, typ, ok := parseStreamName(entry.Name)
			if !ok {
				continue
			}
			switch id {
			case propSubject:
				msg.subject = decodeString(readStream(entry), typ)
			case propSenderName:
				msg.sender = decodeString(readStream(entry), typ)
			case propDisplayTo:
				msg.to = decodeString(readStream(entry), typ)
			case propDisplayCC:
				msg.cc = decodeString(readStream(entry), typ)
			case propBody:
				msg.body = decodeString(readStream(entry), typ)
			case propHTMLBody:
				msg.htmlBody = decodeString(readStream(entry), typ)
			}

		case len(entry.Path) == 1 && strings.HasPrefix(entry.Path[0], attachPrefix):
			id, typ, ok := parseStreamName(entry.Name)
			if !ok || (id != propAttachLongName && id != propAttachShortName) {
				continue
			}
			att := attachments[entry.Path[0]]
			if att == nil {
				att = &attachmentProps{}
				attachments[entry.Path[0]] = att
			}
			name := decodeString(readStream(entry), typ)
			if id == propAttachLongName {
				att.long = name
			} else {
				att.short = name
			}
		}
	}

	msg.date = messageDate(rawProps)
	msg.attachments = attachmentNames(attachments)
	return msg
}

func readStream(f *mscfb.File) []byte {
	data, err := io.ReadAll(f)
	if err != nil {
		return nil
	}
	return data
}

// parseStreamName splits a property stream name such as
// "__substg1.0_0037001F" into its property ID and type.
func parseStreamName(name string) (id, typ uint16, ok bool) {
	s, found := strings.CutPrefix(name, substgPrefix)
	if !found || len(s) != 8 {
		return 0, 0, false
	}
	idVal, err := strconv.ParseUint(s[:4], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	typVal, err := strconv.ParseUint(s[4:], 16, 16)
	if err != nil {
		return 0, 0, false
	}
	return uint16(idVal), uint16(typVal), true
}

// decodeString decodes a property stream value. Unicode properties are
// UTF-16LE, 8-bit strings are treated as Windows-1252, and binary
// values (the usual type of the HTML body) pass through unless they
// are not valid UTF-8.
func decodeString(data []byte, typ uint16) string {
	if len(data) == 0 {
		return ""
	}
	switch typ {
	case typeUnicode:
		decoded, err := utf16Decoder.NewDecoder().Bytes(data)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(decoded), "\x00")
	case typeString8:
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return ""
		}
		return strings.TrimRight(string(decoded), "\x00")
	case typeBinary:
		if utf8.Valid(data) {
			return string(data)
		}
		decoded, err := charmap.Windows1252.NewDecoder().Bytes(data)
		if err != nil {
			return ""
		}
		return string(decoded)
	}
	return ""
}

// messageDate reads the delivery time, or failing that the submit
// time, from the fixed-length property stream. The stream is a 32-byte
// header followed by 16-byte records: a 4-byte tag, 4 bytes of flags
// and an 8-byte value.
func messageDate(raw []byte) time.Time {
	const headerSize = 32
	var submit, deliver time.Time
	for off := headerSize; off+16 <= len(raw); off += 16 {
		tag := binary.LittleEndian.Uint32(raw[off:])
		if uint16(tag) != typeSystime {
			continue
		}
		ft := binary.LittleEndian.Uint64(raw[off+8:])
		switch uint16(tag >> 16) {
		case propDeliveryTime:
			deliver = filetimeToTime(ft)
		case propSubmitTime:
			submit = filetimeToTime(ft)
		}
	}
	if !deliver.IsZero() {
		return deliver
	}
	return submit
}

// filetimeToTime converts a Windows FILETIME (100ns ticks since
// 1601-01-01 UTC) to a time.Time.
func filetimeToTime(ft uint64) time.Time {
	if ft == 0 {
		return time.Time{}
	}
	const epochOffset = 11644473600 // seconds from 1601-01-01 to 1970-01-01
	secs := int64(ft/10000000) - epochOffset
	nanos := int64(ft%10000000) * 100
	return time.Unix(secs, nanos).UTC()
}

// attachmentNames resolves one display name per attachment storage, in
// storage order: long filename, then short, then a numbered fallback.
func attachmentNames(attachments map[string]*attachmentProps) []string {
	if len(attachments) == 0 {
		return nil
	}
	keys := make([]string, 0, len(attachments))
	for k := range attachments {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	names := make([]string, len(keys))
	for i, k := range keys {
		att := attachments[k]
		switch {
		case att.long != "":
			names[i] = att.long
		case att.short != "":
			names[i] = att.short
		default:
			names[i] = fmt.Sprintf("attachment_%d", i+1)
		}
	}
	return names
}

func (c *Converter) render(msg *message) string {
	var b strings.Builder
	b.WriteString("# Email Message\n")
	if msg.subject != "" {
		b.WriteString("**Subject:** " + msg.subject + "\n")
	}
	if msg.sender != "" {
		b.WriteString("**From:** " + msg.sender + "\n")
	}
	if msg.to != "" {
		b.WriteString("**To:** " + msg.to + "\n")
	}
	if msg.cc != "" {
		b.WriteString("**CC:** " + msg.cc + "\n")
	}
	if !msg.date.IsZero() {
		b.WriteString("**Date:** " + msg.date.Format("2006-01-02 15:04:05") + "\n")
	}
	b.WriteString("\n---\n\n")
	b.WriteString(c.messageBody(msg))

	if len(msg.attachments) > 0 {
		b.WriteString("\n\n---\n\n## Attachments\n")
		for _, name := range msg.attachments {
			b.WriteString("- " + name + "\n")
		}
	}
	return cleanMarkdown(b.String())
}

// messageBody prefers the HTML body when present, falling back to the
// plain-text body when conversion fails or yields nothing.
func (c *Converter) messageBody(msg *message) string {
	if msg.htmlBody != "" {
		markdown, err := c.html.Markdown(msg.htmlBody)
		if err == nil && markdown != "" {
			return markdown
		}
		c.logger.Debug("html body conversion failed, using plain text", "error", err)
	}
	return msg.body
}

// cleanMarkdown caps runs of blank lines at two and trims the result.
func cleanMarkdown(markdown string) string {
	lines := strings.Split(markdown, "\n")
	cleaned := make([]string, 0, len(lines))
	blanks := 0
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			blanks++
			if blanks > 2 {
				continue
			}
		} else {
			blanks = 0
		}
		cleaned = append(cleaned, line)
	}
	return strings.TrimSpace(strings.Join(cleaned, "\n"))
}
