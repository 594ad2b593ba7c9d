package health

import (
	"context"
	"testing"
	"time"

	"github.com/nvisycom/core/pkg/category"
	"github.com/nvisycom/core/pkg/detector"
	"github.com/nvisycom/core/pkg/redaction"
	"github.com/nvisycom/core/pkg/tokenizer"
)

func TestAllComponentsHealthy(t *testing.T) {
	toks := tokenizer.NewRegistry()
	tokenizer.RegisterDefaultsOn(toks)

	hc := NewHealthChecker(time.Second)
	hc.AddChecker(TaxonomyChecker(category.Default()))
	hc.AddChecker(TokenizerChecker(toks))
	hc.AddChecker(DetectorChecker(detector.DefaultRegistry()))
	hc.AddChecker(PolicyChecker(redaction.NewPolicy(), false))

	rep := hc.Check(context.Background(), "nvisy-core", "test")
	if rep.Status != StatusHealthy {
		t.Fatalf("status = %v, checks = %+v", rep.Status, rep.Checks)
	}
	if len(rep.Checks) != 4 {
		t.Fatalf("got %d checks", len(rep.Checks))
	}
}

func TestUnfrozenTaxonomyDegrades(t *testing.T) {
	hc := NewHealthChecker(time.Second)
	hc.AddChecker(TaxonomyChecker(category.Builder()))

	rep := hc.Check(context.Background(), "nvisy-core", "test")
	if rep.Status != StatusUnhealthy {
		t.Fatalf("status = %v", rep.Status)
	}
	if rep.Checks["taxonomy"].Status != StatusDegraded {
		t.Fatalf("taxonomy check = %+v", rep.Checks["taxonomy"])
	}
}

func TestInvalidPolicyIsUnhealthy(t *testing.T) {
	policy := redaction.NewPolicy().
		Set(category.Email, redaction.Rule{Strategy: redaction.StrategyHash})

	hc := NewHealthChecker(time.Second)
	hc.AddChecker(PolicyChecker(policy, false))

	rep := hc.Check(context.Background(), "nvisy-core", "test")
	if rep.Status != StatusUnhealthy {
		t.Fatalf("status = %v", rep.Status)
	}
	if rep.Checks["policy"].Error == "" {
		t.Fatal("expected the validation error to surface")
	}
}

func TestEmptyDetectorRegistryIsUnhealthy(t *testing.T) {
	hc := NewHealthChecker(time.Second)
	hc.AddChecker(DetectorChecker(detector.NewRegistry()))

	rep := hc.Check(context.Background(), "nvisy-core", "test")
	if rep.Status != StatusUnhealthy || !rep.Critical {
		t.Fatalf("report = %+v", rep)
	}
}

func TestPanickingCheckIsContained(t *testing.T) {
	hc := NewHealthChecker(time.Second)
	hc.AddChecker(NewChecker("boom", false, func(ctx context.Context) CheckResult {
		panic("check blew up")
	}))
	hc.AddChecker(NewChecker("fine", false, func(ctx context.Context) CheckResult {
		return CheckResult{Status: StatusHealthy}
	}))

	rep := hc.Check(context.Background(), "nvisy-core", "test")
	if rep.Checks["boom"].Status != StatusUnhealthy {
		t.Fatalf("boom = %+v", rep.Checks["boom"])
	}
	if rep.Checks["fine"].Status != StatusHealthy {
		t.Fatalf("fine = %+v", rep.Checks["fine"])
	}
	if rep.Status != StatusUnhealthy {
		t.Fatalf("status = %v", rep.Status)
	}
}
