package convert

import (
	"path"
	"sort"
	"strings"
)

// unit is one independently parseable piece of a corpus: a file, or for
// BRAT a .txt/.ann pair sharing a stem.
type unit struct {
	id    string // document id for single-document formats
	name  string // primary member name
	extra string // .ann member for BRAT
}

func (u unit) label() string {
	if u.extra != "" {
		return u.name + "+" + path.Base(u.extra)
	}
	return u.name
}

func stem(name string) string {
	base := path.Base(name)
	return strings.TrimSuffix(base, path.Ext(base))
}

// units groups member names into units in lexical order. orphans are BRAT
// annotation files without a text file.
func units(f Format, names []string) (out []unit, orphans []string) {
	if f != BRAT {
		for _, n := range names {
			out = append(out, unit{id: stem(n), name: n})
		}
		return out, nil
	}

	type pair struct{ txt, ann string }
	byStem := make(map[string]*pair)
	for _, n := range names {
		key := strings.TrimSuffix(n, path.Ext(n))
		p := byStem[key]
		if p == nil {
			p = &pair{}
			byStem[key] = p
		}
		switch path.Ext(n) {
		case ".txt":
			p.txt = n
		case ".ann":
			p.ann = n
		}
	}
	keys := make([]string, 0, len(byStem))
	for k := range byStem {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		p := byStem[k]
		switch {
		case p.txt != "":
			out = append(out, unit{id: path.Base(k), name: p.txt, extra: p.ann})
		case p.ann != "":
			orphans = append(orphans, p.ann)
		}
	}
	return out, orphans
}
