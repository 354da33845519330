package pptxdoc

import "encoding/xml"

// slideXML represents a ppt/slides/slide*.xml file structure.
type slideXML struct {
	XMLName xml.Name `xml:"sld"`
	CSld    cSldXML  `xml:"cSld"`
}

type cSldXML struct {
	SpTree spTreeXML `xml:"spTree"`
}

// spTreeXML is the shape tree containing all shapes on a slide.
type spTreeXML struct {
	Sp           []spXML           `xml:"sp"`
	Pic          []picXML          `xml:"pic"`
	GraphicFrame []graphicFrameXML `xml:"graphicFrame"`
	GrpSp        []grpSpXML        `xml:"grpSp"`
}

// spXML represents a shape element.
type spXML struct {
	NvSpPr nvSpPrXML  `xml:"nvSpPr"`
	TxBody *txBodyXML `xml:"txBody"`
}

type nvSpPrXML struct {
	NvPr nvPrXML `xml:"nvPr"`
}

type nvPrXML struct {
	Ph *phXML `xml:"ph"` // Placeholder info
}

type phXML struct {
	Type string `xml:"type,attr"` // title, body, subTitle, ctrTitle, etc.
}

// txBodyXML represents text body content.
type txBodyXML struct {
	P []pXML `xml:"p"` // Paragraphs
}

// pXML represents a paragraph.
type pXML struct {
	PPr *pPrXML  `xml:"pPr"`
	R   []rXML   `xml:"r"`
	Fld []fldXML `xml:"fld"` // Fields (like slide number)
}

type pPrXML struct {
	Lvl int `xml:"lvl,attr"` // Bullet level (0-8)
}

// rXML represents a text run.
type rXML struct {
	T string `xml:"t"`
}

type fldXML struct {
	T string `xml:"t"`
}

// picXML represents a picture element.
type picXML struct{}

// graphicFrameXML represents a graphic frame (tables, charts).
type graphicFrameXML struct {
	Graphic graphicXML `xml:"graphic"`
}

type graphicXML struct {
	GraphicData graphicDataXML `xml:"graphicData"`
}

type graphicDataXML struct {
	Tbl *tblXML `xml:"tbl"`
}

// tblXML represents a table.
type tblXML struct {
	Tr []trXML `xml:"tr"`
}

type trXML struct {
	Tc []tcXML `xml:"tc"`
}

type tcXML struct {
	TxBody *txBodyXML `xml:"txBody"`
}

// grpSpXML represents a group of shapes.
type grpSpXML struct {
	Sp    []spXML    `xml:"sp"`
	GrpSp []grpSpXML `xml:"grpSp"` // Nested groups
}

// notesSlideXML represents a ppt/notesSlides/notesSlide*.xml file.
type notesSlideXML struct {
	XMLName xml.Name `xml:"notes"`
	CSld    cSldXML  `xml:"cSld"`
}

// relationshipsXML represents .rels files.
type relationshipsXML struct {
	XMLName      xml.Name          `xml:"Relationships"`
	Relationship []relationshipXML `xml:"Relationship"`
}

type relationshipXML struct {
	ID     string `xml:"Id,attr"`
	Type   string `xml:"Type,attr"`
	Target string `xml:"Target,attr"`
}
