package mcp

import (
	"encoding/json"
	"sort"
	"strings"
	"testing"

	"github.com/hargabyte/clsinfo/internal/decl"
	"github.com/hargabyte/clsinfo/internal/interp"
	"github.com/hargabyte/clsinfo/internal/lookup"
	"github.com/hargabyte/clsinfo/internal/output"
)

// newTestServer serves:
//
//	struct A { int a; void fa(); };
//	struct B { int b; void fb(int) const; };
//	struct C : A, B {};
//	namespace ns { enum E { X }; }
func newTestServer(t *testing.T, tools ...string) *Server {
	t.Helper()
	tr := decl.NewTree(decl.DefaultLayout)
	tu := tr.TU()

	a := tr.AddRecord(tu, decl.TagStruct, "A", true)
	tr.AddField(a, decl.FieldInfo{Name: "a", Type: "int"})
	tr.AddMethod(a, &decl.Method{Name: "fa", Return: "void"})

	b := tr.AddRecord(tu, decl.TagStruct, "B", true)
	tr.AddField(b, decl.FieldInfo{Name: "b", Type: "int"})
	tr.AddMethod(b, &decl.Method{Name: "fb", Return: "void", Const: true, Params: []decl.Param{{Type: "int"}}})

	c := tr.AddRecord(tu, decl.TagStruct, "C", true)
	tr.AddBase(c, a, decl.AccessPublic, false)
	tr.AddBase(c, b, decl.AccessPublic, false)

	ns := tr.AddNamespace(tu, "ns")
	tr.AddEnum(ns, "E", true, "X")

	s, err := New(Config{
		Tools:    tools,
		Resolver: lookup.NewResolver(tr, nil),
		Executor: interp.NewSandbox(tr, nil, nil),
	})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return s
}

func TestGetToolSchemas(t *testing.T) {
	for _, name := range AllTools {
		schema, ok := toolSchemaRegistry[name]
		if !ok {
			t.Errorf("toolSchemaRegistry missing tool: %s", name)
			continue
		}
		if schema.Name != name {
			t.Errorf("schema name mismatch: got %q, want %q", schema.Name, name)
		}
		if schema.Description == "" {
			t.Errorf("tool %s has empty description", name)
		}
	}

	if len(toolSchemaRegistry) != len(AllTools) {
		t.Errorf("toolSchemaRegistry has %d tools, want %d", len(toolSchemaRegistry), len(AllTools))
	}

	s := newTestServer(t, "clsinfo_show")
	schemas := s.GetToolSchemas()
	if len(schemas) != 1 || schemas[0].Name != "clsinfo_show" {
		t.Errorf("GetToolSchemas = %+v", schemas)
	}
}

func TestToolSchemaParameters(t *testing.T) {
	tests := []struct {
		tool          string
		requiredParam string
	}{
		{"clsinfo_show", "name"},
		{"clsinfo_method", "class"},
		{"clsinfo_method", "name"},
	}

	for _, tt := range tests {
		schema, ok := toolSchemaRegistry[tt.tool]
		if !ok {
			t.Fatalf("missing tool: %s", tt.tool)
		}

		found := false
		for _, p := range schema.Parameters {
			if p.Name == tt.requiredParam {
				found = true
				if !p.Required {
					t.Errorf("tool %s param %s should be required", tt.tool, tt.requiredParam)
				}
			}
		}
		if !found {
			t.Errorf("tool %s missing parameter %s", tt.tool, tt.requiredParam)
		}
	}

	for _, p := range toolSchemaRegistry["clsinfo_list"].Parameters {
		if p.Required {
			t.Errorf("clsinfo_list param %s is marked required but should not be", p.Name)
		}
	}
}

func TestNew_Errors(t *testing.T) {
	if _, err := New(Config{}); err == nil {
		t.Error("expected error without a resolver")
	}

	tr := decl.NewTree(decl.DefaultLayout)
	_, err := New(Config{Resolver: lookup.NewResolver(tr, nil), Tools: []string{"cx_show"}})
	if err == nil || !strings.Contains(err.Error(), "cx_show") {
		t.Errorf("expected unknown tool error, got %v", err)
	}
}

func TestListTools(t *testing.T) {
	s := newTestServer(t)
	got := s.ListTools()
	want := append([]string(nil), AllTools...)
	sort.Strings(want)
	if strings.Join(got, ",") != strings.Join(want, ",") {
		t.Errorf("ListTools = %v, want %v", got, want)
	}
}

func TestCallTool_List(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		args map[string]interface{}
		want []string
	}{
		{"all", map[string]interface{}{}, []string{"A", "B", "C", "ns", "ns::E"}},
		{"scope", map[string]interface{}{"scope": "ns"}, []string{"ns", "ns::E"}},
		{"limit", map[string]interface{}{"limit": float64(2)}, []string{"A", "B"}},
		{"no match", map[string]interface{}{"scope": "zz"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.CallTool("clsinfo_list", tt.args)
			if err != nil {
				t.Fatalf("CallTool: %v", err)
			}
			var list output.ListOutput
			if err := json.Unmarshal([]byte(result), &list); err != nil {
				t.Fatalf("bad json: %v\n%s", err, result)
			}
			var names []string
			for _, e := range list.Entities {
				names = append(names, e.Name)
			}
			if strings.Join(names, ",") != strings.Join(tt.want, ",") || list.Count != len(tt.want) {
				t.Errorf("names = %v (count %d), want %v", names, list.Count, tt.want)
			}
		})
	}
}

func TestCallTool_Show(t *testing.T) {
	s := newTestServer(t)

	result, err := s.CallTool("clsinfo_show", map[string]interface{}{"name": "C"})
	if err != nil {
		t.Fatalf("CallTool: %v", err)
	}
	var entity output.EntityOutput
	if err := json.Unmarshal([]byte(result), &entity); err != nil {
		t.Fatalf("bad json: %v", err)
	}
	if entity.Size != 8 || len(entity.Bases) != 2 || entity.Bases[1].Offset != 4 {
		t.Errorf("entity = %+v", entity)
	}

	result, err = s.CallTool("clsinfo_show", map[string]interface{}{"name": "C", "brief": true})
	if err != nil || strings.Contains(result, "bases") {
		t.Errorf("brief show = %s, %v", result, err)
	}

	if _, err := s.CallTool("clsinfo_show", map[string]interface{}{"name": "Nope"}); err == nil {
		t.Error("expected error for unknown name")
	}
	if _, err := s.CallTool("clsinfo_show", map[string]interface{}{}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCallTool_Method(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name       string
		args       map[string]interface{}
		wantFound  bool
		wantOffset int64
	}{
		{"by proto", map[string]interface{}{"class": "C", "name": "fb", "proto": "int"}, true, 4},
		{"by args", map[string]interface{}{"class": "C", "name": "fb", "args": "1"}, true, 4},
		{"exact", map[string]interface{}{"class": "C", "name": "fb", "proto": "long", "exact": true}, false, 0},
		{"const object", map[string]interface{}{"class": "C", "name": "fa", "const": true}, false, 0},
		{"own base", map[string]interface{}{"class": "C", "name": "fa"}, true, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := s.CallTool("clsinfo_method", tt.args)
			if err != nil {
				t.Fatalf("CallTool: %v", err)
			}
			var m output.MethodOutput
			if err := json.Unmarshal([]byte(result), &m); err != nil {
				t.Fatalf("bad json: %v", err)
			}
			if m.Found != tt.wantFound || m.Offset != tt.wantOffset {
				t.Errorf("method = %+v", m)
			}
		})
	}

	if _, err := s.CallTool("clsinfo_method", map[string]interface{}{"class": "Nope", "name": "f"}); err == nil {
		t.Error("expected error for unknown class")
	}
	if _, err := s.CallTool("clsinfo_method", map[string]interface{}{"class": "C"}); err == nil {
		t.Error("expected error for missing name")
	}
}

func TestCallTool_Unregistered(t *testing.T) {
	s := newTestServer(t, "clsinfo_show")
	if _, err := s.CallTool("clsinfo_list", nil); err == nil {
		t.Error("expected error for tool not served")
	}
}
