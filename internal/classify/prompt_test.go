package classify_test

import (
	"strings"
	"testing"

	"github.com/vigilshell/vigilsh/internal/classify"
)

func Test_BuildUserMessage_SentinelTagsWrapCommandExactlyOnce(t *testing.T) {
	t.Parallel()

	msg := classify.BuildUserMessage("cat /etc/shadow", "")

	if strings.Count(msg, "<COMMAND>") != 1 || strings.Count(msg, "</COMMAND>") != 1 {
		t.Fatalf("message = %q, want exactly one <COMMAND> and </COMMAND> each", msg)
	}

	start := strings.Index(msg, "<COMMAND>") + len("<COMMAND>")
	end := strings.Index(msg, "</COMMAND>")

	if msg[start:end] != "cat /etc/shadow" {
		t.Fatalf("command text between tags = %q, want %q", msg[start:end], "cat /etc/shadow")
	}
}

func Test_BuildUserMessage_OmitsScriptBlockWhenEmpty(t *testing.T) {
	t.Parallel()

	msg := classify.BuildUserMessage("ls", "")
	if strings.Contains(msg, "<SCRIPT_CONTENTS>") {
		t.Fatalf("message = %q, did not expect a script block", msg)
	}
}

func Test_BuildUserMessage_IncludesScriptBlockWhenPresent(t *testing.T) {
	t.Parallel()

	msg := classify.BuildUserMessage("source ./setup.sh", "echo hi\n")
	if !strings.Contains(msg, "<SCRIPT_CONTENTS>echo hi\n</SCRIPT_CONTENTS>") {
		t.Fatalf("message = %q, want a script block with the file body", msg)
	}
}

func Test_SystemPromptV1_ContainsJSONSchemaFields(t *testing.T) {
	t.Parallel()

	for _, field := range []string{`"action"`, `"reason"`, `"confidence"`} {
		if !strings.Contains(classify.SystemPromptV1, field) {
			t.Fatalf("SystemPromptV1 is missing schema field %s", field)
		}
	}
}
