package agentconfig_test

import (
	"context"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/agentportal/agentportal/internal/agentconfig"
	"github.com/agentportal/agentportal/internal/agentconfig/repositoryimpl"
	"github.com/agentportal/agentportal/pkg/cerr"
)

func newService() *agentconfig.Service {
	return agentconfig.NewService(repositoryimpl.NewMemoryRepository())
}

func TestCreateGetRoundTrip(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	created, err := svc.Create(ctx, agentconfig.CreateRequest{
		Name:         "support",
		Description:  "handles support questions",
		Purpose:      "answer customer support questions",
		Personality:  "calm and precise",
		Capabilities: []string{"lookup orders", "explain policies"},
		Rules:        []string{"never share personal data"},
	})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}
	if created.ID == "" {
		t.Fatal("created config has empty id")
	}
	if created.Instructions == "" {
		t.Fatal("created config has empty instructions")
	}

	got, err := svc.Get(ctx, created.ID)
	if err != nil {
		t.Fatalf("Get failed: %v", err)
	}
	if !reflect.DeepEqual(got, created) {
		t.Errorf("Get returned a different record: got %+v, want %+v", got, created)
	}
}

func TestCreateValidation(t *testing.T) {
	tests := []struct {
		name string
		req  agentconfig.CreateRequest
	}{
		{name: "missing name", req: agentconfig.CreateRequest{Purpose: "p"}},
		{name: "missing purpose", req: agentconfig.CreateRequest{Name: "n"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := newService().Create(context.Background(), tt.req)
			if !cerr.IsCode(err, cerr.InvalidArgument) {
				t.Errorf("expected InvalidArgument, got %v", err)
			}
		})
	}
}

func TestGetUnknownID(t *testing.T) {
	_, err := newService().Get(context.Background(), "missing")
	if !cerr.IsCode(err, cerr.NotFound) {
		t.Errorf("expected NotFound, got %v", err)
	}
}

func TestListCreationOrder(t *testing.T) {
	svc := newService()
	ctx := context.Background()

	const n = 5
	var ids []string
	for i := 0; i < n; i++ {
		c, err := svc.Create(ctx, agentconfig.CreateRequest{
			Name:    fmt.Sprintf("agent-%d", i),
			Purpose: "testing",
		})
		if err != nil {
			t.Fatalf("Create %d failed: %v", i, err)
		}
		ids = append(ids, c.ID)
	}

	configs, err := svc.List(ctx)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(configs) != n {
		t.Fatalf("List returned %d configs, want %d", len(configs), n)
	}
	for i, c := range configs {
		if c.ID != ids[i] {
			t.Errorf("position %d: got id %s, want %s", i, c.ID, ids[i])
		}
	}
}

func TestRenderInstructions(t *testing.T) {
	got := agentconfig.RenderInstructions(
		"tell jokes",
		"funny and warm",
		[]string{"puns", "dad jokes"},
		[]string{"keep it clean"},
	)

	for _, want := range []string{
		"PRIMARY PURPOSE:\ntell jokes",
		"PERSONALITY:\nfunny and warm",
		"- puns",
		"- dad jokes",
		"1. keep it clean",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("instructions missing %q:\n%s", want, got)
		}
	}
}

func TestRenderInstructionsDefaults(t *testing.T) {
	got := agentconfig.RenderInstructions("help", "", nil, nil)
	if !strings.Contains(got, agentconfig.DefaultPersonality) {
		t.Errorf("default personality not applied:\n%s", got)
	}
	if !strings.Contains(got, "CAPABILITIES:\n- ") {
		t.Errorf("default capabilities not applied:\n%s", got)
	}
	if !strings.Contains(got, "1. ") {
		t.Errorf("default rules not applied:\n%s", got)
	}
}
