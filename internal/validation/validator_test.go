// Reelpick - Movie Recommendation Feedback Client
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelpick

package validation

import (
	"strings"
	"testing"
)

type feedbackInput struct {
	Action string `validate:"required,feedback_action"`
}

type backendInput struct {
	URL   string `validate:"required,base_url"`
	Level string `validate:"log_level"`
	Burst int    `validate:"min=1,max=100"`
}

func TestGetValidator_Singleton(t *testing.T) {
	t.Parallel()

	if GetValidator() != GetValidator() {
		t.Error("expected the same validator instance")
	}
}

func TestFeedbackActionValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		action  string
		wantErr bool
	}{
		{"like", false},
		{"DISLIKE", false},
		{"s", false},
		{"did-not-watch", false},
		{"love", true},
		{"", true},
	}

	for _, tt := range tests {
		err := ValidateStruct(&feedbackInput{Action: tt.action})
		if tt.wantErr && err == nil {
			t.Errorf("action %q: expected error", tt.action)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("action %q: unexpected error: %v", tt.action, err)
		}
	}
}

func TestBaseURLValidation(t *testing.T) {
	t.Parallel()

	tests := []struct {
		url     string
		wantErr bool
	}{
		{"http://localhost:8000", false},
		{"https://recs.example.com/api", false},
		{"ftp://recs.example.com", true},
		{"localhost:8000", true},
		{"http://", true},
		{"http://host?x=1", true},
	}

	for _, tt := range tests {
		err := ValidateStruct(&backendInput{URL: tt.url, Level: "info", Burst: 1})
		if tt.wantErr != (err != nil) {
			t.Errorf("url %q: wantErr=%v, got %v", tt.url, tt.wantErr, err)
		}
	}
}

func TestLogLevelValidation(t *testing.T) {
	t.Parallel()

	if err := ValidateStruct(&backendInput{URL: "http://x", Level: "debug", Burst: 1}); err != nil {
		t.Errorf("unexpected error: %v", err)
	}
	if err := ValidateStruct(&backendInput{URL: "http://x", Level: "verbose", Burst: 1}); err == nil {
		t.Error("expected error for unknown level")
	}
}

func TestToAPIError_SingleError(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&feedbackInput{Action: "love"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	apiErr := err.ToAPIError()
	if apiErr.Code != "VALIDATION_ERROR" {
		t.Errorf("expected code VALIDATION_ERROR, got %s", apiErr.Code)
	}
	if apiErr.Message != "Action must be one of: like dislike skip" {
		t.Errorf("unexpected message: %s", apiErr.Message)
	}
	if apiErr.Details["field"] != "Action" {
		t.Errorf("expected field Action, got %v", apiErr.Details["field"])
	}
}

func TestToAPIError_MultipleErrors(t *testing.T) {
	t.Parallel()

	err := ValidateStruct(&backendInput{URL: "nope", Level: "loud", Burst: 0})
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 3 {
		t.Fatalf("expected 3 errors, got %d", len(err.Errors()))
	}

	apiErr := err.ToAPIError()
	for _, field := range []string{"URL:", "Level:", "Burst:"} {
		if !strings.Contains(apiErr.Message, field) {
			t.Errorf("expected message to mention %s, got %s", field, apiErr.Message)
		}
	}
	fields, ok := apiErr.Details["fields"].([]map[string]interface{})
	if !ok || len(fields) != 3 {
		t.Errorf("expected 3 field details, got %#v", apiErr.Details["fields"])
	}
}

func TestErrorMessages(t *testing.T) {
	t.Parallel()

	type ranged struct {
		Name  string `validate:"min=3"`
		Count int    `validate:"max=2"`
		Mode  string `validate:"oneof=json console"`
	}

	err := ValidateStruct(&ranged{Name: "a", Count: 5, Mode: "xml"})
	if err == nil {
		t.Fatal("expected validation error")
	}

	want := map[string]string{
		"Name":  "Name must be at least 3 characters",
		"Count": "Count must be at most 2",
		"Mode":  "Mode must be one of: json console",
	}
	for _, fe := range err.Errors() {
		if w, ok := want[fe.Field()]; ok && fe.Error() != w {
			t.Errorf("field %s: expected %q, got %q", fe.Field(), w, fe.Error())
		}
	}
}
