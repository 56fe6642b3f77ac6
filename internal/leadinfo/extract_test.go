package leadinfo

import (
	"testing"

	"github.com/MikeSquared-Agency/leadlens/internal/conversation"
)

func msgs(contents ...string) []conversation.Message {
	out := make([]conversation.Message, len(contents))
	for i, c := range contents {
		out[i] = conversation.Message{Content: c}
	}
	return out
}

func TestExtract_Fields(t *testing.T) {
	tests := []struct {
		name    string
		content []string
		want    conversation.LeadInfo
	}{
		{
			name:    "name up to comma",
			content: []string{"Nombre: Juan Pérez, empresa ACME"},
			want:    conversation.LeadInfo{CapturedName: "Juan Pérez"},
		},
		{
			name:    "name up to newline, case-insensitive marker",
			content: []string{"NOMBRE:  María López\nciudad: La Paz"},
			want:    conversation.LeadInfo{CapturedName: "María López"},
		},
		{
			name:    "nit digits only",
			content: []string{"NIT: 1234-567 8, gracias"},
			want:    conversation.LeadInfo{NIT: "12345678"},
		},
		{
			name:    "ci marker",
			content: []string{"mi ci: 4455667 LP"},
			want:    conversation.LeadInfo{NIT: "4455667"},
		},
		{
			name:    "project type",
			content: []string{"Proyecto: galpón industrial\nmetros: 500"},
			want:    conversation.LeadInfo{ProjectType: "galpón industrial"},
		},
		{
			name:    "email",
			content: []string{"escríbeme a ventas.bo@empresa.com.bo por favor"},
			want:    conversation.LeadInfo{Email: "ventas.bo@empresa.com.bo"},
		},
		{
			name:    "chat artifact email rejected",
			content: []string{"link: 59170000001@w.app.net"},
			want:    conversation.LeadInfo{},
		},
		{
			name:    "artifact skipped in favour of real email",
			content: []string{"59170000001@w.app.net o juan@correo.com"},
			want:    conversation.LeadInfo{Email: "juan@correo.com"},
		},
		{
			name:    "no signals",
			content: []string{"hola", "buenas tardes"},
			want:    conversation.LeadInfo{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Extract(msgs(tt.content...))
			if got != tt.want {
				t.Errorf("Extract() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestExtract_LastMatchWins(t *testing.T) {
	got := Extract(msgs(
		"nombre: Primero",
		"correo uno@a.com",
		"nombre: Segundo, gracias",
		"correo dos@b.com",
	))
	if got.CapturedName != "Segundo" {
		t.Errorf("expected later name to win, got %q", got.CapturedName)
	}
	if got.Email != "dos@b.com" {
		t.Errorf("expected later email to win, got %q", got.Email)
	}
}

func TestExtract_EmptyValueDoesNotOverwrite(t *testing.T) {
	got := Extract(msgs("nit: 998877", "nit: pendiente"))
	if got.NIT != "998877" {
		t.Errorf("expected earlier nit to survive a digitless value, got %q", got.NIT)
	}
}

func TestExtract_TaxIDUsesLastMarkerInMessage(t *testing.T) {
	got := Extract(msgs("nit: 111, ci: 222"))
	if got.NIT != "222" {
		t.Errorf("expected value after the last marker, got %q", got.NIT)
	}
}
