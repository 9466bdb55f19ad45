package triage

import "testing"

func TestFallbackClassifyKeywords(t *testing.T) {
	tests := []struct {
		complaint string
		want      Specialization
	}{
		{"chest pain since morning", Cardiology},
		{"my heart races at night", Cardiology},
		{"high BP readings", Cardiology},
		{"short of breath climbing stairs", Cardiology},
		{"broken bone in my wrist", Orthopedics},
		{"joint stiffness", Orthopedics},
		{"fever and chills", GeneralMedicine},
		{"stomach ache after meals", GeneralMedicine},
		{"rash on my arm", Dermatology},
		{"itchy patches", Dermatology},
		{"skin peeling", Dermatology},
		{"allergy flare-up", Dermatology},
		{"blocked nose and sore throat", ENT},
		{"ear pain", ENT},
		{"pregnancy checkup", Gynecology},
		{"missed period", Gynecology},
		{"my child has a cough", Pediatrics},
		{"", GeneralMedicine},
		{"something entirely unrelated", GeneralMedicine},
	}

	for _, tt := range tests {
		if got := FallbackClassify(tt.complaint); got != tt.want {
			t.Errorf("FallbackClassify(%q) = %s, want %s", tt.complaint, got, tt.want)
		}
	}
}

func TestFallbackClassifyPriorityOrder(t *testing.T) {
	// Cardiac keywords outrank later rules even when both match.
	if got := FallbackClassify("chest rash"); got != Cardiology {
		t.Errorf("expected cardiac priority, got %s", got)
	}
	if got := FallbackClassify("fractured rib, trouble to breath"); got != Cardiology {
		t.Errorf("expected cardiac priority over orthopedics, got %s", got)
	}
}

func TestMatchReply(t *testing.T) {
	tests := []struct {
		reply string
		want  Specialization
		ok    bool
	}{
		{"Cardiology", Cardiology, true},
		{"  cardiology\nextra commentary", Cardiology, true},
		{"I think Orthopedics fits best", Orthopedics, true},
		{"DERMATOLOGY", Dermatology, true},
		{"ENT", ENT, true},
		{"women's health", Gynecology, true},
		{"pediatrics", Pediatrics, true},
		{"General Medicine", GeneralMedicine, true},
		{"no idea", "", false},
		{"", "", false},
	}

	for _, tt := range tests {
		got, ok := MatchReply(tt.reply)
		if ok != tt.ok || got != tt.want {
			t.Errorf("MatchReply(%q) = (%s, %v), want (%s, %v)", tt.reply, got, ok, tt.want, tt.ok)
		}
	}
}
