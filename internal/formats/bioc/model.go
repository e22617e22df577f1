package bioc

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/FocuswithJustin/biocorpus/core/xmltext"
)

// collection mirrors the BioC data model. The JSON tags follow the BioC JSON
// serialization; XML input is mapped onto the same structs.
type collection struct {
	Source    string     `json:"source"`
	Documents []document `json:"documents"`
}

type document struct {
	ID        string     `json:"id"`
	Infons    infons     `json:"infons"`
	Passages  []passage  `json:"passages"`
	Relations []relation `json:"relations"`

	// bad holds the reason an XML passage could not be read.
	bad string
}

type passage struct {
	Infons      infons       `json:"infons"`
	Offset      int          `json:"offset"`
	Text        string       `json:"text"`
	Annotations []annotation `json:"annotations"`
	Relations   []relation   `json:"relations"`
}

type annotation struct {
	ID        string     `json:"id"`
	Infons    infons     `json:"infons"`
	Text      string     `json:"text"`
	Locations []location `json:"locations"`

	// bad holds the reason an XML location could not be read.
	bad string
}

type location struct {
	Offset int `json:"offset"`
	Length int `json:"length"`
}

type relation struct {
	ID     string `json:"id"`
	Infons infons `json:"infons"`
	Nodes  []node `json:"nodes"`
}

type node struct {
	RefID string `json:"refid"`
	Role  string `json:"role"`
}

// infons holds BioC key/value metadata. Some writers emit non-string
// values, which are kept in their printed form.
type infons map[string]any

func (in infons) get(key string) string {
	v, ok := in[key]
	if !ok || v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// first returns the first non-empty value among keys.
func (in infons) first(keys ...string) string {
	for _, k := range keys {
		if v := in.get(k); v != "" {
			return v
		}
	}
	return ""
}

func readXML(data []byte) (*collection, error) {
	doc, err := xmltext.Parse(data)
	if err != nil {
		return nil, err
	}
	root := doc.Root()
	if root == nil || root.Name() != "collection" {
		return nil, fmt.Errorf("BioC XML root must be <collection>")
	}

	c := &collection{Source: root.ChildText("source")}
	for _, d := range root.Children("document") {
		cd := document{
			ID:     d.ChildText("id"),
			Infons: xmlInfons(d),
		}
		for _, p := range d.Children("passage") {
			off, err := atoi(p.ChildText("offset"), "passage offset")
			if err != nil {
				cd.bad = err.Error()
				break
			}
			cp := passage{Infons: xmlInfons(p), Offset: off}
			if t := p.Child("text"); t != nil {
				cp.Text = t.Text()
			}
			for _, a := range p.Children("annotation") {
				cp.Annotations = append(cp.Annotations, xmlAnnotation(a))
			}
			for _, r := range p.Children("relation") {
				cp.Relations = append(cp.Relations, xmlRelation(r))
			}
			cd.Passages = append(cd.Passages, cp)
		}
		for _, r := range d.Children("relation") {
			cd.Relations = append(cd.Relations, xmlRelation(r))
		}
		c.Documents = append(c.Documents, cd)
	}
	return c, nil
}

func xmlInfons(n *xmltext.Node) infons {
	in := infons{}
	for _, i := range n.Children("infon") {
		in[i.Attr("key")] = strings.TrimSpace(i.Text())
	}
	return in
}

func xmlAnnotation(a *xmltext.Node) annotation {
	ca := annotation{ID: a.Attr("id"), Infons: xmlInfons(a)}
	if t := a.Child("text"); t != nil {
		ca.Text = t.Text()
	}
	for _, l := range a.Children("location") {
		off, err := atoi(l.Attr("offset"), "location offset")
		if err != nil {
			ca.bad = err.Error()
			return ca
		}
		n, err := atoi(l.Attr("length"), "location length")
		if err != nil {
			ca.bad = err.Error()
			return ca
		}
		ca.Locations = append(ca.Locations, location{Offset: off, Length: n})
	}
	return ca
}

func xmlRelation(r *xmltext.Node) relation {
	cr := relation{ID: r.Attr("id"), Infons: xmlInfons(r)}
	for _, n := range r.Children("node") {
		cr.Nodes = append(cr.Nodes, node{RefID: n.Attr("refid"), Role: n.Attr("role")})
	}
	return cr
}

func atoi(s, what string) (int, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, fmt.Errorf("bad %s %q", what, s)
	}
	return n, nil
}
