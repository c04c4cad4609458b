// SPDX-License-Identifier: MPL-2.0

package issue

import (
	"strings"
	"testing"
)

func TestGet(t *testing.T) {
	tests := []struct {
		id       Id
		wantNil  bool
		contains string
	}{
		{DocumentNotFoundId, false, "Document not found"},
		{DocumentParseErrorId, false, "Failed to parse document"},
		{TypeNotFoundId, false, "cfgbind types"},
		{AmbiguousTypeId, false, "more than one implementation"},
		{TypeMismatchId, false, "Type mismatch"},
		{InstantiationFailedId, false, "abstract"},
		{PopulationFailedId, false, "node path"},
		{SchemaViolationId, false, "strict_schema"},
		{RootUnreadableId, false, "cfgbind scan"},
		{ConfigLoadFailedId, false, "config init"},
		{PermissionDeniedId, false, "Permission denied"},
		{Id(9999), true, ""},
	}

	for _, tt := range tests {
		t.Run(tt.contains, func(t *testing.T) {
			issue := Get(tt.id)
			if tt.wantNil {
				if issue != nil {
					t.Errorf("Get(%d) should return nil", tt.id)
				}
				return
			}
			if issue == nil {
				t.Fatalf("Get(%d) returned nil", tt.id)
			}
			if issue.Id() != tt.id {
				t.Errorf("Get(%d).Id() = %d", tt.id, issue.Id())
			}
			if issue.Title() == "" {
				t.Errorf("Get(%d) has no title", tt.id)
			}
			if !strings.Contains(string(issue.MarkdownMsg()), tt.contains) {
				t.Errorf("Get(%d).MarkdownMsg() should contain %q", tt.id, tt.contains)
			}
		})
	}
}

func TestValues(t *testing.T) {
	issues := Values()
	if len(issues) != int(PermissionDeniedId) {
		t.Fatalf("Values() returned %d issues, want %d", len(issues), PermissionDeniedId)
	}
	for i, issue := range issues {
		if issue.Id() != Id(i+1) {
			t.Errorf("Values()[%d].Id() = %d, want ordered by Id", i, issue.Id())
		}
	}
}

func TestIssue_Links(t *testing.T) {
	issue := &Issue{id: Id(9999), docLinks: []HttpLink{"https://docs.example.com"}}
	links := issue.DocLinks()
	links[0] = "modified"
	if issue.DocLinks()[0] != "https://docs.example.com" {
		t.Error("DocLinks() should return a clone")
	}
	if issue.ExtLinks() != nil {
		t.Error("ExtLinks() should be nil when unset")
	}
}

func TestIssue_Render(t *testing.T) {
	originalRender := render
	defer func() { render = originalRender }()
	render = func(in string, _ string) (string, error) { return in, nil }

	withLinks := &Issue{
		id:       Id(9999),
		mdMsg:    "# Test Issue",
		docLinks: []HttpLink{"https://docs.example.com"},
		extLinks: []HttpLink{"https://external.example.com"},
	}
	rendered, err := withLinks.Render("")
	if err != nil {
		t.Fatalf("Render() returned error: %v", err)
	}
	for _, want := range []string{"See also", "docs.example.com", "external.example.com"} {
		if !strings.Contains(rendered, want) {
			t.Errorf("Render() output should contain %q:\n%s", want, rendered)
		}
	}

	for _, issue := range Values() {
		rendered, err := issue.Render("")
		if err != nil {
			t.Errorf("Issue %d failed to render: %v", issue.Id(), err)
		}
		if strings.Contains(rendered, "See also") {
			t.Errorf("Issue %d has no links but rendered a See also section", issue.Id())
		}
	}
}
