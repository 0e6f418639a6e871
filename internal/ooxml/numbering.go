package ooxml

import (
	"encoding/xml"
	"strconv"

	"github.com/dgallion1/docxport/internal/lists"
	"github.com/dgallion1/docxport/internal/styles"
)

// NumberingPlan assigns w:numId values. Every registry reference gets a
// shared num (1..R, in registry order) used by lists without an instance;
// every ordered-list instance gets its own num after those, so unrelated
// lists never continue each other's counters.
type NumberingPlan struct {
	reg       *styles.NumberingRegistry
	shared    map[string]int
	instances map[int]int
	order     []lists.Info
}

func PlanNumbering(reg *styles.NumberingRegistry, instances []lists.Info) *NumberingPlan {
	p := &NumberingPlan{reg: reg, shared: map[string]int{}, instances: map[int]int{}}
	for i, n := range reg.All() {
		p.shared[n.Reference] = i + 1
	}
	next := reg.Len() + 1
	for _, info := range instances {
		if _, ok := p.shared[info.Reference]; !ok || !info.Numbered() {
			continue
		}
		if _, dup := p.instances[info.Instance]; dup {
			continue
		}
		p.instances[info.Instance] = next
		p.order = append(p.order, info)
		next++
	}
	return p
}

// NumID returns the num for a list paragraph. ok is false when the registry
// has no definition for the reference.
func (p *NumberingPlan) NumID(reference string, instance int) (int, bool) {
	if p == nil {
		return 0, false
	}
	shared, ok := p.shared[reference]
	if !ok {
		return 0, false
	}
	if id, ok := p.instances[instance]; ok && instance > 0 {
		return id, true
	}
	return shared, true
}

// Empty reports whether there is nothing to write.
func (p *NumberingPlan) Empty() bool { return p == nil || len(p.shared) == 0 }

type numberingPart struct {
	XMLName  xml.Name      `xml:"w:numbering"`
	XMLW     string        `xml:"xmlns:w,attr"`
	Abstract []abstractNum `xml:"w:abstractNum"`
	Nums     []num         `xml:"w:num"`
}

type abstractNum struct {
	ID        int     `xml:"w:abstractNumId,attr"`
	MultiType val     `xml:"w:multiLevelType"`
	Levels    []lvlEl `xml:"w:lvl"`
}

type lvlEl struct {
	Ilvl   int  `xml:"w:ilvl,attr"`
	Start  val  `xml:"w:start"`
	NumFmt val  `xml:"w:numFmt"`
	Text   val  `xml:"w:lvlText"`
	Jc     *val `xml:"w:lvlJc,omitempty"`
	PPr    *pPr
	RPr    *rPr
}

type num struct {
	ID        int           `xml:"w:numId,attr"`
	Abstract  val           `xml:"w:abstractNumId"`
	Overrides []lvlOverride `xml:"w:lvlOverride,omitempty"`
}

type lvlOverride struct {
	Ilvl  int `xml:"w:ilvl,attr"`
	Start val `xml:"w:startOverride"`
}

// XML renders word/numbering.xml.
func (p *NumberingPlan) XML() ([]byte, error) {
	part := numberingPart{XMLW: nsW}
	for i, n := range p.reg.All() {
		abs := abstractNum{ID: i, MultiType: val{Val: "hybridMultilevel"}}
		for _, l := range n.Levels {
			abs.Levels = append(abs.Levels, levelXML(l))
		}
		part.Abstract = append(part.Abstract, abs)
		part.Nums = append(part.Nums, num{ID: i + 1, Abstract: val{Val: strconv.Itoa(i)}})
	}
	for _, info := range p.order {
		idx, _ := p.reg.Index(info.Reference)
		part.Nums = append(part.Nums, num{
			ID:       p.instances[info.Instance],
			Abstract: val{Val: strconv.Itoa(idx)},
			Overrides: []lvlOverride{{
				Ilvl:  info.Level,
				Start: val{Val: strconv.Itoa(max(info.Start, 0))},
			}},
		})
	}
	return marshalPart(part)
}

func levelXML(l styles.Level) lvlEl {
	start := l.Start
	if start <= 0 {
		start = 1
	}
	format := l.Format
	if format == "" {
		format = "decimal"
	}
	el := lvlEl{
		Ilvl:   l.Level,
		Start:  val{Val: strconv.Itoa(start)},
		NumFmt: val{Val: format},
		Text:   val{Val: l.Text},
		Jc:     strVal(Justification(l.Alignment)),
		RPr:    runProps(l.Run),
	}
	if l.Left != nil || l.Hanging != nil {
		el.PPr = &pPr{Ind: &ind{Left: l.Left, Hanging: l.Hanging}}
	}
	return el
}
