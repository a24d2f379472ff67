package netflow

import (
	"context"
	"errors"
	"testing"

	"github.com/wI2L/jsondiff"
)

func TestEnsureExporterCreate(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)

	res, err := svc.EnsureExporter(context.Background(), TemplateRef{Name: "tpl1"}, ExporterSpec{
		Name:            "exp2",
		DestinationIP:   strPtr("10.0.0.2"),
		DestinationPort: intPtr(9995),
	})
	if err != nil {
		t.Fatalf("EnsureExporter: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected Changed")
	}
	if len(res.Ops) != 1 || res.Ops[0].Type != jsondiff.OperationAdd {
		t.Fatalf("expected a single add op, got %v", res.Ops)
	}
	if res.Ops[0].Path != "/tenantPolicyTemplate/template/netFlowExporters/-" {
		t.Fatalf("unexpected add path %q", res.Ops[0].Path)
	}

	payload := res.Ops[0].Value.(map[string]any)
	if _, ok := payload["description"]; ok {
		t.Fatal("unset fields must be pruned from the create payload")
	}

	created := findObject(t, api, "netFlowExporters", "exp2")
	if created["destIP"] != "10.0.0.2" {
		t.Fatalf("created object not applied: %v", created)
	}
	if res.Current == nil || res.Current["name"] != "exp2" {
		t.Fatalf("Current should hold the created object, got %v", res.Current)
	}
}

func TestEnsureExporterCreateRequiresName(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)

	_, err := svc.EnsureExporter(context.Background(), TemplateRef{Name: "tpl1"}, ExporterSpec{UUID: "no-such-uuid"})
	if !errors.Is(err, ErrNameRequired) {
		t.Fatalf("expected ErrNameRequired, got %v", err)
	}
}

func TestEnsureExporterNoChange(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)

	res, err := svc.EnsureExporter(context.Background(), TemplateRef{Name: "tpl1"}, ExporterSpec{
		Name:            "exp1",
		Description:     strPtr("first"),
		DestinationPort: intPtr(2055),
	})
	if err != nil {
		t.Fatalf("EnsureExporter: %v", err)
	}
	if res.Changed {
		t.Fatalf("expected no change, got ops %v", res.Ops)
	}
	if api.patchCalls != 0 {
		t.Fatalf("no-op must not patch, got %d calls", api.patchCalls)
	}
}

func TestEnsureExporterUpdate(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)

	res, err := svc.EnsureExporter(context.Background(), TemplateRef{Name: "tpl1"}, ExporterSpec{
		Name:            "exp1",
		DestinationPort: intPtr(9995),
		QoS:             &QoSSpec{DSCP: strPtr("cs5")},
	})
	if err != nil {
		t.Fatalf("EnsureExporter: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected Changed")
	}
	// destPort replaced; the qosPolicy sub-object is absent on the
	// orchestrator so its field update is skipped.
	if len(res.Ops) != 1 {
		t.Fatalf("expected 1 op, got %v", res.Ops)
	}
	if res.Ops[0].Path != "/tenantPolicyTemplate/template/netFlowExporters/0/destPort" {
		t.Fatalf("unexpected path %q", res.Ops[0].Path)
	}
	if res.Previous["destPort"] != float64(2055) {
		t.Fatalf("Previous must keep the pre-update value, got %v", res.Previous["destPort"])
	}
	if got := findObject(t, api, "netFlowExporters", "exp1")["destPort"]; got != float64(9995) {
		t.Fatalf("destPort not applied, got %v", got)
	}
}

func TestEnsureExporterRename(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)

	res, err := svc.EnsureExporter(context.Background(), TemplateRef{Name: "tpl1"}, ExporterSpec{
		UUID: "exp-uuid-1",
		Name: "exp1-renamed",
	})
	if err != nil {
		t.Fatalf("EnsureExporter: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected Changed")
	}
	if res.Current["name"] != "exp1-renamed" {
		t.Fatalf("rename not applied, got %v", res.Current["name"])
	}
}

func TestEnsureExporterDryRun(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)
	svc.DryRun = true

	res, err := svc.EnsureExporter(context.Background(), TemplateRef{Name: "tpl1"}, ExporterSpec{
		Name:          "exp1",
		DestinationIP: strPtr("10.9.9.9"),
	})
	if err != nil {
		t.Fatalf("EnsureExporter: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected Changed")
	}
	if api.patchCalls != 0 {
		t.Fatal("dry run must not patch")
	}
	if res.Proposed["destIP"] != "10.9.9.9" {
		t.Fatalf("Proposed must show the declared state, got %v", res.Proposed["destIP"])
	}
	if got := findObject(t, api, "netFlowExporters", "exp1")["destIP"]; got != "10.0.0.1" {
		t.Fatalf("dry run must not modify the stored document, got %v", got)
	}
}

func TestClearQoS(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	exp := findObject(t, api, "netFlowExporters", "exp1")
	exp["qosPolicy"] = map[string]any{"dscp": "cs3"}
	svc := NewService(api)

	res, err := svc.EnsureExporter(context.Background(), TemplateRef{Name: "tpl1"}, ExporterSpec{
		Name:     "exp1",
		ClearQoS: true,
	})
	if err != nil {
		t.Fatalf("EnsureExporter: %v", err)
	}
	if len(res.Ops) != 1 || res.Ops[0].Type != jsondiff.OperationRemove {
		t.Fatalf("expected a single remove op, got %v", res.Ops)
	}
	if _, ok := findObject(t, api, "netFlowExporters", "exp1")["qosPolicy"]; ok {
		t.Fatal("qosPolicy should be gone")
	}
}

func TestDeleteExporter(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)

	res, err := svc.DeleteExporter(context.Background(), TemplateRef{Name: "tpl1"}, "", "exp1")
	if err != nil {
		t.Fatalf("DeleteExporter: %v", err)
	}
	if !res.Changed {
		t.Fatal("expected Changed")
	}
	if res.Previous["name"] != "exp1" {
		t.Fatalf("Previous must hold the deleted object, got %v", res.Previous)
	}

	res, err = svc.DeleteExporter(context.Background(), TemplateRef{Name: "tpl1"}, "", "exp1")
	if err != nil {
		t.Fatalf("DeleteExporter absent: %v", err)
	}
	if res.Changed {
		t.Fatal("deleting an absent object must be a no-op")
	}
}

func TestQueryExporters(t *testing.T) {
	api := newFakeAPI(t)
	api.seedTemplate()
	svc := NewService(api)
	ctx := context.Background()
	ref := TemplateRef{Name: "tpl1"}

	if _, err := svc.EnsureExporter(ctx, ref, ExporterSpec{Name: "exp2"}); err != nil {
		t.Fatalf("seeding second exporter: %v", err)
	}

	all, err := svc.QueryExporters(ctx, ref, "", "", "")
	if err != nil {
		t.Fatalf("QueryExporters: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected 2 exporters, got %d", len(all))
	}
	if all[0]["templateName"] != "tpl1" || all[0]["templateId"] != "tpl-id-1" {
		t.Fatalf("query output must carry template identity, got %v", all[0])
	}

	one, err := svc.QueryExporters(ctx, ref, "", "exp2", "")
	if err != nil {
		t.Fatalf("QueryExporters by name: %v", err)
	}
	if len(one) != 1 || one[0]["name"] != "exp2" {
		t.Fatalf("expected exp2, got %v", one)
	}

	filtered, err := svc.QueryExporters(ctx, ref, "", "", `Field("destPort") == 2055`)
	if err != nil {
		t.Fatalf("QueryExporters filtered: %v", err)
	}
	if len(filtered) != 1 || filtered[0]["name"] != "exp1" {
		t.Fatalf("filter should match exp1 only, got %v", filtered)
	}
}
