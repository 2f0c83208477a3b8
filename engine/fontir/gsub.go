package fontir

import (
	"fmt"
	"sort"

	"github.com/npillmayer/fontbridge/core/font/ot"
)

const (
	lookupSingle   = 1
	lookupLigature = 4
)

// lookup is a GSUB lookup of type single or ligature substitution.
type lookup struct {
	kind      int
	single    map[uint16]uint16
	ligatures map[string]ligature // keyed by component sequence
}

type ligature struct {
	components []uint16
	glyph      uint16
}

func ligatureKey(components []uint16) string {
	return fmt.Sprint(components)
}

// feature collects the lookups of one feature tag, in order of appearance.
type feature struct {
	tag     ot.Tag
	lookups []*lookup
}

func (ft *feature) lookupOfKind(kind int) *lookup {
	for _, l := range ft.lookups {
		if l.kind == kind {
			return l
		}
	}
	l := &lookup{kind: kind}
	if kind == lookupSingle {
		l.single = make(map[uint16]uint16)
	} else {
		l.ligatures = make(map[string]ligature)
	}
	ft.lookups = append(ft.lookups, l)
	return l
}

// compileFeatures compiles the font's feature code into a 'GSUB' table.
// Rules referring to glyphs which are not part of the font are dropped.
func (c *compiler) compileFeatures() error {
	fea := c.font.Features
	if fea == nil || fea.Code == "" {
		return nil
	}
	ff, err := ParseFeatures(fea.Code)
	if err != nil {
		return fmt.Errorf("feature code: %w", err)
	}
	resolver := newGlyphResolver(fea.Classes)
	features := make(map[ot.Tag]*feature)
	for _, st := range ff.Statements {
		switch {
		case st.ClassDef != nil:
			if err := resolver.define(st.ClassDef); err != nil {
				return fmt.Errorf("feature code: %w", err)
			}
		case st.Feature != nil:
			tag, err := ot.ParseTag(st.Feature.Tag)
			if err != nil {
				return fmt.Errorf("feature code: %s: %w", st.Feature.Pos, err)
			}
			ft, ok := features[tag]
			if !ok {
				ft = &feature{tag: tag}
				features[tag] = ft
			}
			for _, rule := range st.Feature.Rules {
				if rule.Input == nil {
					continue
				}
				if err := c.addRule(ft, rule, resolver); err != nil {
					return fmt.Errorf("feature code: %s: %w", rule.Pos, err)
				}
			}
		}
	}
	var list []*feature
	for _, ft := range features {
		kept := ft.lookups[:0]
		for _, l := range ft.lookups {
			if len(l.single) > 0 || len(l.ligatures) > 0 {
				kept = append(kept, l)
			}
		}
		ft.lookups = kept
		if len(kept) > 0 {
			list = append(list, ft)
		}
	}
	if len(list) == 0 {
		tracer().Debugf("feature code yields no substitutions")
		return nil
	}
	sort.Slice(list, func(i, j int) bool { return list[i].tag < list[j].tag })
	gsub, err := encodeGSUB(list)
	if err != nil {
		return err
	}
	c.tables[ot.T("GSUB")] = gsub
	return nil
}

func (c *compiler) addRule(ft *feature, rule *FeaRule, r *glyphResolver) error {
	out, err := r.expand(rule.Output)
	if err != nil {
		return err
	}
	if len(rule.Input) > 1 { // ligature
		if !rule.Output.isSingle() {
			return fmt.Errorf("ligature substitution must produce a single glyph")
		}
		comps := make([]uint16, len(rule.Input))
		for i, in := range rule.Input {
			if !in.isSingle() {
				return fmt.Errorf("ligature components must be single glyphs")
			}
			names, _ := r.expand(in)
			gid, ok := c.gid[names[0]]
			if !ok {
				tracer().Debugf("dropping ligature rule: no glyph %s", names[0])
				return nil
			}
			comps[i] = gid
		}
		lig, ok := c.gid[out[0]]
		if !ok {
			tracer().Debugf("dropping ligature rule: no glyph %s", out[0])
			return nil
		}
		l := ft.lookupOfKind(lookupLigature)
		l.ligatures[ligatureKey(comps)] = ligature{components: comps, glyph: lig}
		if len(comps) > c.context {
			c.context = len(comps)
		}
		return nil
	}
	in, err := r.expand(rule.Input[0])
	if err != nil {
		return err
	}
	if len(out) != 1 && len(out) != len(in) {
		return fmt.Errorf("cannot substitute %d glyphs by %d glyphs", len(in), len(out))
	}
	l := ft.lookupOfKind(lookupSingle)
	for i, name := range in {
		target := out[0]
		if len(out) > 1 {
			target = out[i]
		}
		from, okf := c.gid[name]
		to, okt := c.gid[target]
		if !okf || !okt {
			tracer().Debugf("dropping substitution %s -> %s", name, target)
			continue
		}
		l.single[from] = to
	}
	if c.context < 1 {
		c.context = 1
	}
	return nil
}

// --- GSUB encoding ---------------------------------------------------------

// encodeGSUB writes a GSUB table with a single DFLT script whose default
// language system activates all features.
func encodeGSUB(features []*feature) ([]byte, error) {
	var lookups [][]byte
	var featureLookups [][]uint16
	for _, ft := range features {
		var indices []uint16
		for _, l := range ft.lookups {
			sub, err := l.encode()
			if err != nil {
				return nil, err
			}
			indices = append(indices, uint16(len(lookups)))
			lookups = append(lookups, sub)
		}
		featureLookups = append(featureLookups, indices)
	}
	// ScriptList with DFLT → Script → default LangSys
	var scripts buffer
	scripts.u16(1)
	scripts.tag(ot.T("DFLT"))
	scripts.u16(8) // offset to Script
	scripts.u16(4) // offset to default LangSys
	scripts.u16(0) // langSysCount
	scripts.u16(0) // lookupOrderOffset
	scripts.u16(0xffff)
	scripts.u16(uint16(len(features)))
	for i := range features {
		scripts.u16(uint16(i))
	}
	var featureList buffer
	featureList.u16(uint16(len(features)))
	off := 2 + 6*len(features)
	for i, ft := range features {
		featureList.tag(ft.tag)
		if err := featureList.offset16(off); err != nil {
			return nil, err
		}
		off += 4 + 2*len(featureLookups[i])
	}
	for _, indices := range featureLookups {
		featureList.u16(0) // featureParamsOffset
		featureList.u16(uint16(len(indices)))
		for _, x := range indices {
			featureList.u16(x)
		}
	}
	lookupList, err := concatWithOffsets(lookups)
	if err != nil {
		return nil, err
	}
	var b buffer
	b.u16(1)
	b.u16(0)
	off = 10
	for _, part := range [][]byte{scripts, featureList} {
		if err := b.offset16(off); err != nil {
			return nil, fmt.Errorf("GSUB: %w", err)
		}
		off += len(part)
	}
	if err := b.offset16(off); err != nil {
		return nil, fmt.Errorf("GSUB: %w", err)
	}
	b.bytes(scripts)
	b.bytes(featureList)
	b.bytes(lookupList)
	return b, nil
}

// concatWithOffsets writes a count, an array of 16-bit offsets and the
// subtables the offsets point to.
func concatWithOffsets(parts [][]byte) ([]byte, error) {
	var b buffer
	b.u16(uint16(len(parts)))
	off := 2 + 2*len(parts)
	for _, p := range parts {
		if err := b.offset16(off); err != nil {
			return nil, err
		}
		off += len(p)
	}
	for _, p := range parts {
		b.bytes(p)
	}
	return b, nil
}

func (l *lookup) encode() ([]byte, error) {
	var sub []byte
	var err error
	if l.kind == lookupSingle {
		sub, err = l.encodeSingle()
	} else {
		sub, err = l.encodeLigatures()
	}
	if err != nil {
		return nil, err
	}
	var b buffer
	b.u16(uint16(l.kind))
	b.u16(0) // lookupFlag
	b.u16(1) // subTableCount
	b.u16(8)
	b.bytes(sub)
	return b, nil
}

func coverage(glyphs []uint16) []byte {
	var b buffer
	b.u16(1)
	b.u16(uint16(len(glyphs)))
	for _, g := range glyphs {
		b.u16(g)
	}
	return b
}

// encodeSingle writes a single substitution subtable, format 2.
func (l *lookup) encodeSingle() ([]byte, error) {
	glyphs := make([]uint16, 0, len(l.single))
	for g := range l.single {
		glyphs = append(glyphs, g)
	}
	sort.Slice(glyphs, func(i, j int) bool { return glyphs[i] < glyphs[j] })
	var b buffer
	b.u16(2)
	if err := b.offset16(6 + 2*len(glyphs)); err != nil {
		return nil, err
	}
	b.u16(uint16(len(glyphs)))
	for _, g := range glyphs {
		b.u16(l.single[g])
	}
	b.bytes(coverage(glyphs))
	return b, nil
}

// encodeLigatures writes a ligature substitution subtable, format 1.
// Ligatures sharing a first glyph are ordered longest first.
func (l *lookup) encodeLigatures() ([]byte, error) {
	sets := make(map[uint16][]ligature)
	for _, lig := range l.ligatures {
		first := lig.components[0]
		sets[first] = append(sets[first], lig)
	}
	firsts := make([]uint16, 0, len(sets))
	for g := range sets {
		firsts = append(firsts, g)
	}
	sort.Slice(firsts, func(i, j int) bool { return firsts[i] < firsts[j] })
	var setData [][]byte
	for _, first := range firsts {
		ligs := sets[first]
		sort.Slice(ligs, func(i, j int) bool {
			if len(ligs[i].components) != len(ligs[j].components) {
				return len(ligs[i].components) > len(ligs[j].components)
			}
			return ligatureKey(ligs[i].components) < ligatureKey(ligs[j].components)
		})
		var ligData [][]byte
		for _, lig := range ligs {
			var lb buffer
			lb.u16(lig.glyph)
			lb.u16(uint16(len(lig.components)))
			for _, g := range lig.components[1:] {
				lb.u16(g)
			}
			ligData = append(ligData, lb)
		}
		set, err := concatWithOffsets(ligData)
		if err != nil {
			return nil, err
		}
		setData = append(setData, set)
	}
	var b buffer
	b.u16(1)
	header := 6 + 2*len(setData)
	size := header
	for _, s := range setData {
		size += len(s)
	}
	if err := b.offset16(size); err != nil {
		return nil, err
	}
	b.u16(uint16(len(setData)))
	off := header
	for _, s := range setData {
		if err := b.offset16(off); err != nil {
			return nil, err
		}
		off += len(s)
	}
	for _, s := range setData {
		b.bytes(s)
	}
	b.bytes(coverage(firsts))
	return b, nil
}
