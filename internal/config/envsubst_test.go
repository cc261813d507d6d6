package config

import (
	"testing"
)

func TestSubstituteEnvVars_Simple(t *testing.T) {
	t.Setenv("MOODFLIX_TEST_SIMPLE", "hello")

	content, missing := substituteEnvVars("value = ${MOODFLIX_TEST_SIMPLE}")
	if content != "value = hello" {
		t.Errorf("expected 'value = hello', got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSubstituteEnvVars_Missing(t *testing.T) {
	content, missing := substituteEnvVars("value = ${MOODFLIX_TEST_NONEXISTENT_12345}")
	if content != "value = ${MOODFLIX_TEST_NONEXISTENT_12345}" {
		t.Errorf("expected unchanged, got %q", content)
	}
	if len(missing) != 1 || missing[0] != "MOODFLIX_TEST_NONEXISTENT_12345" {
		t.Errorf("expected [MOODFLIX_TEST_NONEXISTENT_12345], got %v", missing)
	}
}

func TestSubstituteEnvVars_SetButEmpty(t *testing.T) {
	t.Setenv("MOODFLIX_TEST_EMPTY", "")

	content, missing := substituteEnvVars("value = \"${MOODFLIX_TEST_EMPTY}\"")
	if content != `value = ""` {
		t.Errorf("expected empty value, got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("plain form accepts empty values, got %v", missing)
	}
}

func TestSubstituteEnvVars_Default(t *testing.T) {
	t.Setenv("MOODFLIX_TEST_DEFAULT", "")

	content, missing := substituteEnvVars("value = ${MOODFLIX_TEST_DEFAULT:-fallback}")
	if content != "value = fallback" {
		t.Errorf("expected 'value = fallback', got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars with default, got %v", missing)
	}
}

func TestSubstituteEnvVars_EmptyDefault(t *testing.T) {
	content, missing := substituteEnvVars(`api_key = "${MOODFLIX_TEST_NONEXISTENT_EMPTY:-}"`)
	if content != `api_key = ""` {
		t.Errorf("expected empty default, got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSubstituteEnvVars_DefaultOverriddenByEnv(t *testing.T) {
	t.Setenv("MOODFLIX_TEST_OVERRIDE", "from_env")

	content, missing := substituteEnvVars("value = ${MOODFLIX_TEST_OVERRIDE:-default}")
	if content != "value = from_env" {
		t.Errorf("expected 'value = from_env', got %q", content)
	}
	if len(missing) != 0 {
		t.Errorf("expected no missing vars, got %v", missing)
	}
}

func TestSubstituteEnvVars_RequiredError(t *testing.T) {
	t.Setenv("MOODFLIX_TEST_REQUIRED", "")

	content, missing := substituteEnvVars("value = ${MOODFLIX_TEST_REQUIRED:?OMDb key is required}")
	if content != "value = ${MOODFLIX_TEST_REQUIRED:?OMDb key is required}" {
		t.Errorf("expected unchanged, got %q", content)
	}
	if len(missing) != 1 || missing[0] != "MOODFLIX_TEST_REQUIRED: OMDb key is required" {
		t.Errorf("expected error message, got %v", missing)
	}
}

func TestSubstituteEnvVars_Multiple(t *testing.T) {
	t.Setenv("MOODFLIX_TEST_ONE", "one")
	t.Setenv("MOODFLIX_TEST_THREE", "")

	content, missing := substituteEnvVars("${MOODFLIX_TEST_ONE} ${MOODFLIX_TEST_TWO_NONEXISTENT} ${MOODFLIX_TEST_THREE:-three}")
	if content != "one ${MOODFLIX_TEST_TWO_NONEXISTENT} three" {
		t.Errorf("expected 'one ${MOODFLIX_TEST_TWO_NONEXISTENT} three', got %q", content)
	}
	if len(missing) != 1 || missing[0] != "MOODFLIX_TEST_TWO_NONEXISTENT" {
		t.Errorf("expected [MOODFLIX_TEST_TWO_NONEXISTENT], got %v", missing)
	}
}

func TestSubstituteEnvVars_Comments(t *testing.T) {
	t.Setenv("MOODFLIX_TEST_COMMENT", "set")

	tests := []struct {
		name    string
		in      string
		want    string
		missing int
	}{
		{"full line comment", "# ${MOODFLIX_TEST_UNSET_X}\n", "# ${MOODFLIX_TEST_UNSET_X}\n", 0},
		{"trailing comment", "a = \"${MOODFLIX_TEST_COMMENT}\" # ${MOODFLIX_TEST_UNSET_X}", "a = \"set\" # ${MOODFLIX_TEST_UNSET_X}", 0},
		{"hash inside string", "a = \"x#${MOODFLIX_TEST_COMMENT}\"", "a = \"x#set\"", 0},
		{"hash inside literal string", "a = 'x#${MOODFLIX_TEST_COMMENT}'", "a = 'x#set'", 0},
		{"escaped quote", `a = "q\"#${MOODFLIX_TEST_COMMENT}"`, `a = "q\"#set"`, 0},
		{"reference before comment", "a = \"${MOODFLIX_TEST_UNSET_X}\" # note", "a = \"${MOODFLIX_TEST_UNSET_X}\" # note", 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, missing := substituteEnvVars(tt.in)
			if got != tt.want {
				t.Errorf("got %q, want %q", got, tt.want)
			}
			if len(missing) != tt.missing {
				t.Errorf("expected %d missing, got %v", tt.missing, missing)
			}
		})
	}
}
