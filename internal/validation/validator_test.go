// Somnus - Sleep Tracking and Social Sleep Analytics
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/somnus

package validation

import "testing"

type pageRequest struct {
	Page       int `validate:"min=1"`
	Limit      int `validate:"min=1,max=100"`
	PeriodDays int `validate:"omitempty,gte=1,lte=365"`
}

func TestValidateStructValid(t *testing.T) {
	req := pageRequest{Page: 1, Limit: 10, PeriodDays: 30}
	if err := ValidateStruct(&req); err != nil {
		t.Errorf("expected valid, got %v", err)
	}
}

func TestValidateStructInvalid(t *testing.T) {
	tests := []struct {
		name    string
		req     pageRequest
		wantMsg string
	}{
		{
			name:    "page below minimum",
			req:     pageRequest{Page: 0, Limit: 10},
			wantMsg: "Page must be at least 1",
		},
		{
			name:    "limit above maximum",
			req:     pageRequest{Page: 1, Limit: 500},
			wantMsg: "Limit must be at most 100",
		},
		{
			name:    "period days out of range",
			req:     pageRequest{Page: 1, Limit: 10, PeriodDays: 400},
			wantMsg: "PeriodDays must be less than or equal to 365",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateStruct(&tt.req)
			if err == nil {
				t.Fatal("expected validation error")
			}
			msgs := err.Messages()
			if len(msgs) != 1 {
				t.Fatalf("messages = %v, want one", msgs)
			}
			if msgs[0] != tt.wantMsg {
				t.Errorf("message = %q, want %q", msgs[0], tt.wantMsg)
			}
		})
	}
}

func TestValidateStructMultipleErrors(t *testing.T) {
	req := pageRequest{Page: 0, Limit: 0}
	err := ValidateStruct(&req)
	if err == nil {
		t.Fatal("expected validation error")
	}
	if len(err.Errors()) != 2 {
		t.Errorf("errors = %d, want 2", len(err.Errors()))
	}
}
