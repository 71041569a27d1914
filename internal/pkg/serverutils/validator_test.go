package serverutils

import (
	"errors"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"

	"github.com/furkantngr/ragchatbot/internal/dto"
)

func TestValidateRequest(t *testing.T) {
	tests := []struct {
		name    string
		req     interface{}
		wantErr bool
		wantMsg string
	}{
		{
			name:    "ask request with query passes",
			req:     dto.AskRequest{Query: "how much annual leave?", Mode: "fast"},
			wantErr: false,
		},
		{
			name:    "ask request without query fails",
			req:     dto.AskRequest{Mode: "fast"},
			wantErr: true,
			wantMsg: "query is required",
		},
		{
			name:    "mode alone is optional",
			req:     dto.AskRequest{Query: "q"},
			wantErr: false,
		},
		{
			name:    "login missing both fields reports both",
			req:     dto.LoginRequest{},
			wantErr: true,
			wantMsg: "username is required, password is required",
		},
		{
			name:    "set model without name fails",
			req:     dto.SetModelRequest{},
			wantErr: true,
			wantMsg: "modelname is required",
		},
		{
			name:    "save prompt with content passes",
			req:     dto.SavePromptRequest{Content: "Answer from {context}."},
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateRequest(tt.req)
			if !tt.wantErr {
				if err != nil {
					t.Fatalf("ValidateRequest() error = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatal("ValidateRequest() = nil, want error")
			}

			var fiberErr *fiber.Error
			if !errors.As(err, &fiberErr) {
				t.Fatalf("ValidateRequest() error type = %T, want *fiber.Error", err)
			}
			if fiberErr.Code != fiber.StatusBadRequest {
				t.Errorf("error code = %d, want 400", fiberErr.Code)
			}
			if !strings.Contains(fiberErr.Message, tt.wantMsg) {
				t.Errorf("error message = %q, want it to contain %q", fiberErr.Message, tt.wantMsg)
			}
		})
	}
}
