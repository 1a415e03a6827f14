package decl

import "testing"

func scopeFixture() (*Tree, map[string]*Decl) {
	tr := NewTree(DefaultLayout)
	tu := tr.TU()
	m := map[string]*Decl{}

	geo := tr.AddNamespace(tu, "geo")
	m["geo"] = geo
	m["fwd"] = tr.AddRecord(geo, TagStruct, "Point", false)
	geo2 := tr.AddNamespace(tu, "geo")
	pt := tr.AddRecord(geo2, TagStruct, "Point", true)
	addFields(tr, pt, FieldInfo{Name: "x", Type: "double"}, FieldInfo{Name: "y", Type: "double"})
	m["Point"] = pt
	m["Alias"] = tr.AddTypedef(geo2, "Coord", "Point")
	m["PtrAlias"] = tr.AddTypedef(geo2, "PointPtr", "Point*")
	m["Color"] = tr.AddScopedEnum(geo2, "Color", "Red", "Green")
	m["Opaque"] = tr.AddRecord(tu, TagClass, "Opaque", false)

	inner := tr.AddRecord(pt, TagStruct, "Inner", true)
	m["Inner"] = inner

	tmpl, pattern := tr.AddClassTemplate(tu, TagClass, "Box", "T")
	addFields(tr, pattern, FieldInfo{Name: "value", Type: "T"})
	tr.AddMethod(pattern, &Method{Name: "get", Return: "const T&", Const: true})
	tr.AddTypedef(pattern, "value_type", "T")
	m["Box"] = tmpl

	explicit := tr.AddSpecialization(tu, tmpl, TagClass, "Box", []string{"bool"}, true)
	addFields(tr, explicit, FieldInfo{Name: "bits", Type: "unsigned char"})
	m["Box<bool>"] = explicit
	return tr, m
}

func TestTree_FindScope(t *testing.T) {
	tr, m := scopeFixture()

	tests := []struct {
		name     string
		wantDecl *Decl
		wantType *Decl
	}{
		{"geo", m["geo"], nil},
		{"::geo", m["geo"], nil},
		{"geo::Point", m["Point"], m["Point"]},
		{"geo::Point::Inner", m["Inner"], m["Inner"]},
		{"geo::Color", m["Color"], m["Color"]},
		{"geo::Coord", nil, m["Point"]},
		{"Opaque", m["Opaque"], m["Opaque"]},
		{"Box<bool>", m["Box<bool>"], m["Box<bool>"]},
		{"geo::Missing", nil, nil},
		{"Nope::Point", nil, nil},
		{"", nil, nil},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, typ := tr.FindScope(tt.name)
			if d != tt.wantDecl {
				t.Errorf("decl = %v, want %v", d, tt.wantDecl)
			}
			switch {
			case tt.wantType == nil && typ != nil:
				t.Errorf("unexpected type %q", typ.Spelling)
			case tt.wantType != nil && (typ == nil || typ.Decl != tt.wantType):
				t.Errorf("type = %+v, want decl %s", typ, tt.wantType.Name())
			}
		})
	}

	_, typ := tr.FindScope("geo::Coord")
	if typ.Typedef != m["Alias"] {
		t.Error("typedef not recorded on type")
	}
	if _, typ := tr.FindScope("Opaque"); !typ.IsIncomplete() {
		t.Error("forward-declared class type should be incomplete")
	}
	if _, typ := tr.FindScope("geo::PointPtr"); typ == nil || !typ.Indirect || typ.IsIncomplete() {
		t.Errorf("pointer typedef = %+v", typ)
	}
}

func TestTree_Instantiate(t *testing.T) {
	tr, m := scopeFixture()

	spec, typ := tr.FindScope("Box<int>")
	if spec == nil || typ == nil {
		t.Fatal("Box<int> not instantiated")
	}
	if spec.Kind() != TemplateSpecialization || spec.Name() != "Box<int>" || spec.Template() != m["Box"] {
		t.Errorf("spec = %s %s", spec.Kind(), spec.Name())
	}
	if tr.Instantiations() != 1 {
		t.Errorf("Instantiations() = %d", tr.Instantiations())
	}
	again, _ := tr.FindScope("Box< int >")
	if again != spec || tr.Instantiations() != 1 {
		t.Error("second lookup created another specialization")
	}

	fields := spec.Fields()
	if len(fields) != 1 || fields[0].Type != "int" {
		t.Fatalf("fields = %+v", fields)
	}
	methods := spec.Methods()
	if len(methods) != 1 || methods[0].Return != "const int&" || methods[0].Parent != spec {
		t.Fatalf("methods = %+v", methods)
	}
	if got := tr.SizeOf(spec); got != 4 {
		t.Errorf("SizeOf(Box<int>) = %d", got)
	}
	for _, c := range tr.TU().Children() {
		if c == spec {
			t.Error("implicit specialization listed among TU children")
		}
	}

	if d, _ := tr.FindScope("Box<bool>"); d != m["Box<bool>"] {
		t.Error("explicit specialization not preferred")
	}
	if tr.Instantiations() != 1 {
		t.Error("explicit specialization counted as instantiation")
	}
}

func TestTree_ResolveType(t *testing.T) {
	tr, m := scopeFixture()

	tests := []struct {
		spelling string
		scope    *Decl
		spell    string
		decl     *Decl
		builtin  bool
		indirect bool
	}{
		{"unsigned", nil, "unsigned int", nil, true, false},
		{"const Int_t", nil, "int", nil, true, false},
		{"size_t", nil, "unsigned long", nil, true, false},
		{"const geo::Point&", nil, "geo::Point", m["Point"], false, true},
		{"Point", m["geo"], "geo::Point", m["Point"], false, false},
		{"Inner", m["Point"], "geo::Point::Inner", m["Inner"], false, false},
		{"struct ::geo::Point *", nil, "geo::Point", m["Point"], false, true},
		{"const ::geo::Point&", nil, "geo::Point", m["Point"], false, true},
		{"class::geo::Point", nil, "geo::Point", m["Point"], false, false},
		{"geo::Coord", nil, "geo::Point", m["Point"], false, false},
		{"geo::Color", nil, "geo::Color", m["Color"], false, false},
	}
	for _, tt := range tests {
		t.Run(tt.spelling, func(t *testing.T) {
			typ := tr.ResolveType(tt.spelling, tt.scope)
			if typ == nil {
				t.Fatal("ResolveType returned nil")
			}
			if typ.Spelling != tt.spell || typ.Decl != tt.decl || typ.Builtin != tt.builtin || typ.Indirect != tt.indirect {
				t.Errorf("got %+v", typ)
			}
		})
	}

	if tr.ResolveType("Unknown", nil) != nil {
		t.Error("unknown name resolved")
	}
	if !tr.ResolveType("geo::Color", nil).IsEnum() {
		t.Error("enum type not reported as enum")
	}
	if !tr.ResolveType("double", nil).IsFundamental() {
		t.Error("double not fundamental")
	}
	if got := CanonicalBuiltin("const long int"); got != "long" {
		t.Errorf("CanonicalBuiltin = %q", got)
	}
}
