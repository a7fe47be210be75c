package wit

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/coreos/go-semver/semver"
)

// This file implements a pragmatic JSON codec for [Resolve]. It is not a
// byte-exact clone of any particular upstream wire format: the IR loader is
// an external collaborator per the core's external-interfaces contract, and
// this repository's own tests construct Resolve values directly as Go
// struct literals rather than depending on this codec's exact shape.
// `cmd/wit-bindgen-c` decodes with it when its path argument names a
// `.json` file, without shelling out to an external parser.
//
// Cross-references (Package, Owner, TypeDefKind payload types, ...) are
// encoded as integer indices into the corresponding top-level arena array,
// mirroring how upstream wit-json represents its id-arena-backed graph.

type jsonResolve struct {
	Worlds     []jsonWorld     `json:"worlds"`
	Interfaces []jsonInterface `json:"interfaces"`
	Types      []jsonTypeDef   `json:"types"`
	Packages   []jsonPackage   `json:"packages"`
}

type jsonPackage struct {
	Namespace string `json:"namespace"`
	Name      string `json:"name"`
	Version   string `json:"version,omitempty"`
}

type jsonWorld struct {
	Name    string            `json:"name"`
	Package int               `json:"package"`
	Imports map[string]string `json:"imports"` // value: "interface:N" | "type:N"; world-level functions are not decoded
	Exports map[string]string `json:"exports"`
	Docs    string            `json:"docs,omitempty"`
}

type jsonInterface struct {
	Name      string                 `json:"name,omitempty"`
	Package   int                    `json:"package"`
	TypeDefs  map[string]int         `json:"types"`
	Functions map[string]jsonFunc    `json:"functions"`
	Docs      string                 `json:"docs,omitempty"`
	_         struct{}
}

type jsonFunc struct {
	Kind    string          `json:"kind"` // "freestanding" | "method:N" | "static:N" | "constructor:N"; not read: decodeFunc decodes every function as Freestanding
	Params  []jsonParam     `json:"params"`
	Results []jsonParam     `json:"results"`
	Docs    string          `json:"docs,omitempty"`
}

type jsonParam struct {
	Name string    `json:"name"`
	Type jsonType_ `json:"type"`
}

// jsonType_ encodes a [Type]: either a primitive name or a reference to
// a TypeDef by arena index.
type jsonType_ struct {
	Primitive string `json:"primitive,omitempty"`
	TypeDef   *int   `json:"type,omitempty"`
}

type jsonTypeDef struct {
	Name  string          `json:"name,omitempty"`
	Owner jsonOwner       `json:"owner"`
	Kind  json.RawMessage `json:"kind"`
	Docs  string          `json:"docs,omitempty"`
}

type jsonOwner struct {
	World     *int `json:"world,omitempty"`
	Interface *int `json:"interface,omitempty"`
}

type jsonKindField struct {
	Kind string `json:"kind"`
}

type jsonField struct {
	Name string    `json:"name"`
	Type jsonType_ `json:"type"`
	Docs string    `json:"docs,omitempty"`
}

type jsonCase struct {
	Name string     `json:"name"`
	Type *jsonType_ `json:"type,omitempty"`
	Docs string     `json:"docs,omitempty"`
}

// DecodeJSON decodes a [Resolve] from r, a document in the shape this file
// documents.
func DecodeJSON(r io.Reader) (*Resolve, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("wit: reading JSON resolve: %w", err)
	}
	var doc jsonResolve
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("wit: decoding JSON resolve: %w", err)
	}
	return decodeResolve(&doc)
}

func decodeResolve(doc *jsonResolve) (*Resolve, error) {
	res := &Resolve{}

	for _, p := range doc.Packages {
		pkg := &Package{Name: Ident{Namespace: p.Namespace, Package: p.Name}}
		if p.Version != "" {
			v, err := semver.NewVersion(p.Version)
			if err != nil {
				return nil, fmt.Errorf("wit: package %s:%s version: %w", p.Namespace, p.Name, err)
			}
			pkg.Name.Version = v
		}
		res.Packages = append(res.Packages, pkg)
	}

	// First pass: allocate empty TypeDefs so forward references resolve.
	for range doc.Types {
		res.TypeDefs = append(res.TypeDefs, &TypeDef{})
	}
	for range doc.Interfaces {
		res.Interfaces = append(res.Interfaces, &Interface{})
	}
	for range doc.Worlds {
		res.Worlds = append(res.Worlds, &World{})
	}

	typeRef := func(t jsonType_) (Type, error) {
		if t.TypeDef != nil {
			if *t.TypeDef < 0 || *t.TypeDef >= len(res.TypeDefs) {
				return nil, fmt.Errorf("wit: type index %d out of range", *t.TypeDef)
			}
			return res.TypeDefs[*t.TypeDef], nil
		}
		return ParseType(t.Primitive)
	}

	for i, jt := range doc.Types {
		td := res.TypeDefs[i]
		if jt.Name != "" {
			name := jt.Name
			td.Name = &name
		}
		td.Docs = Docs{Contents: jt.Docs}
		if jt.Owner.Interface != nil {
			td.Owner = res.Interfaces[*jt.Owner.Interface]
		} else if jt.Owner.World != nil {
			td.Owner = res.Worlds[*jt.Owner.World]
		}
		kind, err := decodeTypeDefKind(jt.Kind, typeRef)
		if err != nil {
			return nil, fmt.Errorf("wit: type %d: %w", i, err)
		}
		td.Kind = kind
	}

	for i, ji := range doc.Interfaces {
		iface := res.Interfaces[i]
		if ji.Name != "" {
			name := ji.Name
			iface.Name = &name
		}
		if ji.Package >= 0 && ji.Package < len(res.Packages) {
			iface.Package = res.Packages[ji.Package]
		}
		iface.Docs = Docs{Contents: ji.Docs}
		for name, idx := range ji.TypeDefs {
			iface.TypeDefs.Set(name, res.TypeDefs[idx])
		}
		for name, jf := range ji.Functions {
			f, err := decodeFunc(name, jf, typeRef)
			if err != nil {
				return nil, fmt.Errorf("wit: function %s: %w", name, err)
			}
			iface.Functions.Set(name, f)
		}
	}

	worldItem := func(ref string) (WorldItem, error) {
		kind, num, ok := strings.Cut(ref, ":")
		idx, err := strconv.Atoi(num)
		if !ok || err != nil {
			return nil, fmt.Errorf("wit: malformed world item reference %q", ref)
		}
		switch kind {
		case "interface":
			if idx < 0 || idx >= len(res.Interfaces) {
				return nil, fmt.Errorf("wit: interface index %d out of range", idx)
			}
			return &InterfaceRef{Interface: res.Interfaces[idx]}, nil
		case "type":
			if idx < 0 || idx >= len(res.TypeDefs) {
				return nil, fmt.Errorf("wit: type index %d out of range", idx)
			}
			return res.TypeDefs[idx], nil
		default:
			return nil, fmt.Errorf("wit: unknown world item kind %q", kind)
		}
	}

	for i, jw := range doc.Worlds {
		w := res.Worlds[i]
		w.Name = jw.Name
		if jw.Package >= 0 && jw.Package < len(res.Packages) {
			w.Package = res.Packages[jw.Package]
		}
		w.Docs = Docs{Contents: jw.Docs}
		for name, ref := range jw.Imports {
			item, err := worldItem(ref)
			if err != nil {
				return nil, fmt.Errorf("wit: world %s import %s: %w", w.Name, name, err)
			}
			w.Imports.Set(name, item)
		}
		for name, ref := range jw.Exports {
			item, err := worldItem(ref)
			if err != nil {
				return nil, fmt.Errorf("wit: world %s export %s: %w", w.Name, name, err)
			}
			w.Exports.Set(name, item)
		}
	}

	return res, nil
}

func decodeFunc(name string, jf jsonFunc, typeRef func(jsonType_) (Type, error)) (*Function, error) {
	f := &Function{Name: name, Kind: &Freestanding{}}
	f.Docs = Docs{Contents: jf.Docs}
	for _, p := range jf.Params {
		t, err := typeRef(p.Type)
		if err != nil {
			return nil, err
		}
		f.Params = append(f.Params, Param{Name: p.Name, Type: t})
	}
	for _, p := range jf.Results {
		t, err := typeRef(p.Type)
		if err != nil {
			return nil, err
		}
		f.Results = append(f.Results, Param{Name: p.Name, Type: t})
	}
	return f, nil
}

// decodeTypeDefKind dispatches on the "kind" discriminator field to decode
// one of Record, Tuple, Flags, Variant, Union, Enum, Option, Result, List,
// or an alias (a bare jsonType_ shape keyed "alias").
func decodeTypeDefKind(raw json.RawMessage, typeRef func(jsonType_) (Type, error)) (TypeDefKind, error) {
	var disc jsonKindField
	if err := json.Unmarshal(raw, &disc); err != nil {
		return nil, err
	}
	switch disc.Kind {
	case "record":
		var body struct {
			Fields []jsonField `json:"fields"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		r := &Record{}
		for _, jf := range body.Fields {
			t, err := typeRef(jf.Type)
			if err != nil {
				return nil, err
			}
			r.Fields = append(r.Fields, Field{Name: jf.Name, Type: t, Docs: Docs{Contents: jf.Docs}})
		}
		return r, nil
	case "tuple":
		var body struct {
			Types []jsonType_ `json:"types"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		tup := &Tuple{}
		for _, jt := range body.Types {
			t, err := typeRef(jt)
			if err != nil {
				return nil, err
			}
			tup.Types = append(tup.Types, t)
		}
		return tup, nil
	case "flags":
		var body struct {
			Flags []string `json:"flags"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		fl := &Flags{}
		for _, name := range body.Flags {
			fl.Flags = append(fl.Flags, Flag{Name: name})
		}
		return fl, nil
	case "variant":
		var body struct {
			Cases []jsonCase `json:"cases"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		v := &Variant{}
		for _, jc := range body.Cases {
			c := Case{Name: jc.Name, Docs: Docs{Contents: jc.Docs}}
			if jc.Type != nil {
				t, err := typeRef(*jc.Type)
				if err != nil {
					return nil, err
				}
				c.Type = t
			}
			v.Cases = append(v.Cases, c)
		}
		return v, nil
	case "union":
		var body struct {
			Types []jsonType_ `json:"types"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		u := &Union{}
		for _, jt := range body.Types {
			t, err := typeRef(jt)
			if err != nil {
				return nil, err
			}
			u.Types = append(u.Types, t)
		}
		return u, nil
	case "enum":
		var body struct {
			Cases []jsonCase `json:"cases"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		e := &Enum{}
		for _, jc := range body.Cases {
			e.Cases = append(e.Cases, EnumCase{Name: jc.Name, Docs: Docs{Contents: jc.Docs}})
		}
		return e, nil
	case "option":
		var body struct {
			Type jsonType_ `json:"type"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		t, err := typeRef(body.Type)
		if err != nil {
			return nil, err
		}
		return &Option{Type: t}, nil
	case "result":
		var body struct {
			Ok  *jsonType_ `json:"ok,omitempty"`
			Err *jsonType_ `json:"err,omitempty"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		r := &Result{}
		if body.Ok != nil {
			t, err := typeRef(*body.Ok)
			if err != nil {
				return nil, err
			}
			r.OK = t
		}
		if body.Err != nil {
			t, err := typeRef(*body.Err)
			if err != nil {
				return nil, err
			}
			r.Err = t
		}
		return r, nil
	case "list":
		var body struct {
			Type jsonType_ `json:"type"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		t, err := typeRef(body.Type)
		if err != nil {
			return nil, err
		}
		return &List{Type: t}, nil
	case "alias":
		var body struct {
			Type jsonType_ `json:"type"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		t, err := typeRef(body.Type)
		if err != nil {
			return nil, err
		}
		if td, ok := t.(*TypeDef); ok {
			return td, nil
		}
		return nil, fmt.Errorf("alias target is not a named type")
	case "resource":
		return &Resource{}, nil
	case "future":
		var body struct {
			Type *jsonType_ `json:"type,omitempty"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		f := &Future{}
		if body.Type != nil {
			t, err := typeRef(*body.Type)
			if err != nil {
				return nil, err
			}
			f.Type = t
		}
		return f, nil
	case "stream":
		var body struct {
			Element *jsonType_ `json:"element,omitempty"`
			End     *jsonType_ `json:"end,omitempty"`
		}
		if err := json.Unmarshal(raw, &body); err != nil {
			return nil, err
		}
		s := &Stream{}
		if body.Element != nil {
			t, err := typeRef(*body.Element)
			if err != nil {
				return nil, err
			}
			s.Element = t
		}
		if body.End != nil {
			t, err := typeRef(*body.End)
			if err != nil {
				return nil, err
			}
			s.End = t
		}
		return s, nil
	default:
		return nil, fmt.Errorf("unknown type kind %q", disc.Kind)
	}
}
