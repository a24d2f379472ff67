package netflow

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/brunoga/deep"
	jsonpatch "github.com/evanphx/json-patch/v5"
	"github.com/wI2L/jsondiff"

	"github.com/ndoctl-project/ndoctl/internal/ndo"
)

// fakeAPI serves template documents from memory and applies PATCH ops the
// way the orchestrator would: against its own pristine copy.
type fakeAPI struct {
	t *testing.T

	docs    map[string]map[string]any
	nameIDs map[string]string
	objects map[string]string // objectType/uuid -> name

	patchCalls int
	lastOps    jsondiff.Patch
}

func newFakeAPI(t *testing.T) *fakeAPI {
	return &fakeAPI{
		t:       t,
		docs:    map[string]map[string]any{},
		nameIDs: map[string]string{},
		objects: map[string]string{},
	}
}

func (f *fakeAPI) GetTemplate(_ context.Context, id string) (*ndo.Template, error) {
	doc, ok := f.docs[id]
	if !ok {
		return nil, ndo.ErrTemplateNotFound
	}
	return ndo.NewTemplate(id, deep.MustCopy(doc)), nil
}

func (f *fakeAPI) FindTemplateID(_ context.Context, name, _ string) (string, error) {
	id, ok := f.nameIDs[name]
	if !ok {
		return "", ndo.ErrTemplateNotFound
	}
	return id, nil
}

func (f *fakeAPI) PatchTemplate(_ context.Context, id string, ops jsondiff.Patch) (*ndo.Template, error) {
	f.patchCalls++
	f.lastOps = ops

	raw, err := json.Marshal(f.docs[id])
	if err != nil {
		f.t.Fatalf("marshaling document: %v", err)
	}
	opsJSON, err := json.Marshal(ops)
	if err != nil {
		f.t.Fatalf("marshaling ops: %v", err)
	}
	// The orchestrator accepts replace on a not-yet-present member; emulate
	// the upsert with an add, which is equivalent for object member paths.
	var rawOps []map[string]json.RawMessage
	if err := json.Unmarshal(opsJSON, &rawOps); err != nil {
		f.t.Fatalf("decoding ops: %v", err)
	}
	replaceOp := json.RawMessage(`"replace"`)
	addOp := json.RawMessage(`"add"`)
	for i := range rawOps {
		if string(rawOps[i]["op"]) == string(replaceOp) {
			rawOps[i]["op"] = addOp
		}
	}
	if opsJSON, err = json.Marshal(rawOps); err != nil {
		f.t.Fatalf("re-encoding ops: %v", err)
	}
	patch, err := jsonpatch.DecodePatch(opsJSON)
	if err != nil {
		f.t.Fatalf("decoding ops: %v", err)
	}
	applied, err := patch.Apply(raw)
	if err != nil {
		f.t.Fatalf("applying ops: %v", err)
	}

	var doc map[string]any
	if err := json.Unmarshal(applied, &doc); err != nil {
		f.t.Fatalf("unmarshaling patched document: %v", err)
	}
	f.docs[id] = doc
	return ndo.NewTemplate(id, deep.MustCopy(doc)), nil
}

func (f *fakeAPI) ObjectName(_ context.Context, objectType, uuid string) (string, error) {
	return f.objects[objectType+"/"+uuid], nil
}

// seedTemplate installs a tenant policy template named tpl1 with one
// exporter, one record and one monitor.
func (f *fakeAPI) seedTemplate() {
	f.docs["tpl-id-1"] = map[string]any{
		"displayName":  "tpl1",
		"templateType": "tenantPolicy",
		"tenantPolicyTemplate": map[string]any{
			"template": map[string]any{
				"netFlowExporters": []any{
					map[string]any{
						"uuid":         "exp-uuid-1",
						"name":         "exp1",
						"description":  "first",
						"destIP":       "10.0.0.1",
						"destPort":     float64(2055),
						"sourceIPType": "tep",
					},
				},
				"netFlowRecords": []any{
					map[string]any{
						"uuid":  "rec-uuid-1",
						"name":  "rec1",
						"match": []any{"src-ip", "dst-ip"},
					},
				},
				"netFlowMonitors": []any{
					map[string]any{
						"uuid":         "mon-uuid-1",
						"name":         "mon1",
						"recordRef":    "rec-uuid-1",
						"exporterRefs": []any{"exp-uuid-1"},
					},
				},
			},
		},
	}
	f.nameIDs["tpl1"] = "tpl-id-1"
	f.objects["netFlowRecord/rec-uuid-1"] = "rec1"
	f.objects["netFlowExporter/exp-uuid-1"] = "exp1"
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func findObject(t *testing.T, f *fakeAPI, array, name string) map[string]any {
	t.Helper()
	tpl := ndo.NewTemplate("tpl-id-1", f.docs["tpl-id-1"])
	m := tpl.FindPolicyObject(array, "", name)
	if m == nil {
		t.Fatalf("object %q not found in %s", name, array)
	}
	return m.Details
}
