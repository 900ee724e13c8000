package ruleset

import (
	"reflect"
	"testing"

	"github.com/ppiankov/factlens/internal/model"
)

func TestReconcile_DemotesLowConfidenceAffirmative(t *testing.T) {
	for r := 0; r < MinAffirmativeReliability; r++ {
		for _, v := range []model.Verdict{model.VerdictTrueWithSource, model.VerdictStatedDataWithSource} {
			got := Reconcile(model.ResultRecord{Verdict: v, AuditReliability: r})
			if got.Verdict != model.VerdictUnverifiable {
				t.Errorf("reliability %d, %s: expected UNVERIFIABLE, got %s", r, v, got.Verdict)
			}
			if got.AuditReliability != r {
				t.Errorf("reliability %d: expected score untouched, got %d", r, got.AuditReliability)
			}
		}
	}
}

func TestReconcile_KeepsAffirmativeAtThreshold(t *testing.T) {
	got := Reconcile(model.ResultRecord{Verdict: model.VerdictTrueWithSource, AuditReliability: 45})

	if got.Verdict != model.VerdictTrueWithSource {
		t.Errorf("Expected TRUE_WITH_SOURCE at 45, got %s", got.Verdict)
	}
}

func TestReconcile_NonAffirmativeUntouched(t *testing.T) {
	for _, v := range []model.Verdict{model.VerdictTrueImprecise, model.VerdictDistorted, model.VerdictNeedsEvidence, model.VerdictUnverifiable} {
		got := Reconcile(model.ResultRecord{Verdict: v, AuditReliability: 10})
		if got.Verdict != v || got.AuditReliability != 10 {
			t.Errorf("%s: expected no change, got %s/%d", v, got.Verdict, got.AuditReliability)
		}
	}
}

func TestReconcile_FalseFloor(t *testing.T) {
	for r := 0; r <= 100; r++ {
		got := Reconcile(model.ResultRecord{Verdict: model.VerdictFalse, AuditReliability: r})

		if got.AuditReliability < MinFalseReliability {
			t.Errorf("reliability %d: expected >= %d, got %d", r, MinFalseReliability, got.AuditReliability)
		}
		if r >= MinFalseReliability && got.AuditReliability != r {
			t.Errorf("reliability %d: expected unchanged, got %d", r, got.AuditReliability)
		}
	}
}

func TestReconcile_Idempotent(t *testing.T) {
	for _, v := range model.Verdicts() {
		for r := 0; r <= 100; r += 5 {
			draft := model.ResultRecord{
				RequestID:        "req-1",
				Verdict:          v,
				AuditReliability: r,
				Interests:        []string{"political"},
			}
			once := Reconcile(draft)
			twice := Reconcile(once)
			if !reflect.DeepEqual(once, twice) {
				t.Errorf("%s/%d: not idempotent: %+v vs %+v", v, r, once, twice)
			}
		}
	}
}

func TestReconcile_DoesNotMutateDraft(t *testing.T) {
	draft := model.ResultRecord{Verdict: model.VerdictFalse, AuditReliability: 20}

	_ = Reconcile(draft)

	if draft.AuditReliability != 20 {
		t.Errorf("Expected draft untouched, got %d", draft.AuditReliability)
	}
}

func TestExplain_ReportsFiredRules(t *testing.T) {
	_, adj := Explain(model.ResultRecord{Verdict: model.VerdictFalse, AuditReliability: 30})
	if len(adj) != 1 || adj[0].Rule != "raise-false-floor" {
		t.Errorf("Expected raise-false-floor, got %+v", adj)
	}

	_, adj = Explain(model.ResultRecord{Verdict: model.VerdictTrueWithSource, AuditReliability: 90})
	if len(adj) != 0 {
		t.Errorf("Expected no adjustments, got %+v", adj)
	}
}
