package intake_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/GodofWar9000/tele-triage/internal/domain"
	"github.com/GodofWar9000/tele-triage/internal/intake"
)

const testSchema = `
greeting: Welcome.
completion: Done, a clinician will text you.
holding: Still reviewing.
questions:
  - key: age
    kind: number
    prompt: Age?
    retry: Numbers only.
  - key: fever
    kind: yesno
    prompt: Fever?
    retry: Yes or no.
  - key: zip_code
    kind: zip
    prompt: Zip?
    retry: Bad zip.
  - key: symptoms
    kind: text
    prompt: Symptoms?
`

func newService(t *testing.T) *intake.Service {
	t.Helper()
	s, err := intake.ParseSchema([]byte(testSchema))
	require.NoError(t, err)
	return intake.NewService(s, zap.NewNop())
}

func advance(t *testing.T, svc *intake.Service, identity, input string) intake.Step {
	t.Helper()
	step, err := svc.Advance(context.Background(), identity, input)
	require.NoError(t, err)
	return step
}

func TestAdvance_FullConversation(t *testing.T) {
	svc := newService(t)
	const id = "+15550100"

	step := advance(t, svc, id, "hello")
	assert.Equal(t, "Welcome.\n\nAge?", step.Reply)
	assert.False(t, step.Complete)

	assert.Equal(t, "Fever?", advance(t, svc, id, " 42 ").Reply)
	assert.Equal(t, "Zip?", advance(t, svc, id, "YES").Reply)
	assert.Equal(t, "Symptoms?", advance(t, svc, id, "62701-1234").Reply)

	step = advance(t, svc, id, "tired and achy")
	assert.True(t, step.Complete)
	assert.Equal(t, "Done, a clinician will text you.", step.Reply)
	require.NotNil(t, step.Record)
	assert.Equal(t, id, step.Record.ID)
	assert.Equal(t, 42, step.Record.Attributes["age"])
	assert.Equal(t, true, step.Record.Attributes["fever"])
	assert.Equal(t, "62701", step.Record.Attributes[domain.AttrZipCode])
	assert.Equal(t, "tired and achy", step.Record.Attributes["symptoms"])

	assert.True(t, svc.Waiting(id))
	step = advance(t, svc, id, "anything else?")
	assert.Equal(t, "Still reviewing.", step.Reply)
	assert.False(t, step.Complete)
}

func TestAdvance_InvalidAnswerReasks(t *testing.T) {
	svc := newService(t)
	const id = "+15550101"
	advance(t, svc, id, "hi")

	assert.Equal(t, "Numbers only.\n\nAge?", advance(t, svc, id, "forty").Reply)
	assert.Equal(t, "Numbers only.\n\nAge?", advance(t, svc, id, "-3").Reply)
	assert.Equal(t, "Fever?", advance(t, svc, id, "40").Reply)
	assert.Equal(t, "Yes or no.\n\nFever?", advance(t, svc, id, "maybe").Reply)
	assert.Equal(t, "Zip?", advance(t, svc, id, "n").Reply)
	assert.Equal(t, "Bad zip.\n\nZip?", advance(t, svc, id, "6270").Reply)
	assert.Equal(t, "Symptoms?", advance(t, svc, id, "62701").Reply)
	// No retry hint configured: only the prompt is repeated.
	assert.Equal(t, "Symptoms?", advance(t, svc, id, "   ").Reply)
}

func TestDelete_StartsOver(t *testing.T) {
	svc := newService(t)
	const id = "+15550102"
	advance(t, svc, id, "hi")
	advance(t, svc, id, "30")
	assert.Equal(t, 1, svc.Active())

	svc.Delete(id)
	assert.Equal(t, 0, svc.Active())
	assert.Equal(t, "Welcome.\n\nAge?", advance(t, svc, id, "RESTART").Reply)
}

func TestAdvance_IdentitiesAreIndependent(t *testing.T) {
	svc := newService(t)
	advance(t, svc, "a", "hi")
	advance(t, svc, "b", "hi")
	assert.Equal(t, "Fever?", advance(t, svc, "a", "20").Reply)
	assert.Equal(t, "Numbers only.\n\nAge?", advance(t, svc, "b", "yes").Reply)
}

func TestAdvance_RejectsEmptyIdentity(t *testing.T) {
	_, err := newService(t).Advance(context.Background(), "", "hi")
	assert.ErrorIs(t, err, domain.ErrInvalidIdentity)
}

func TestParseSchema_Errors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"no questions", "completion: x\n", "at least one question"},
		{"no completion", "questions: [{key: a, kind: text, prompt: p}]\n", "completion reply is required"},
		{"bad kind", "completion: x\nquestions: [{key: a, kind: date, prompt: p}]\n", `unknown kind "date"`},
		{"duplicate key", "completion: x\nquestions: [{key: a, kind: text, prompt: p}, {key: a, kind: text, prompt: q}]\n", "duplicate key"},
		{"unknown field", "completion: x\ncolour: red\n", "colour"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := intake.ParseSchema([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoadSchema_ShippedFile(t *testing.T) {
	s, err := intake.LoadSchema(filepath.Join("..", "..", "schema.yaml"))
	require.NoError(t, err)

	var hasZip bool
	for _, q := range s.Questions {
		hasZip = hasZip || q.Key == domain.AttrZipCode
	}
	assert.True(t, hasZip, "facility matching needs zip_code from intake")

	_, err = intake.LoadSchema(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}
