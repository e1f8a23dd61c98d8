package patient_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Alijeyrad/simorq_portal/internal/repo/repotest"
	"github.com/Alijeyrad/simorq_portal/internal/service/patient"
)

func ptr(s string) *string { return &s }

func TestCreateNormalisesContactData(t *testing.T) {
	ctx := context.Background()
	svc := patient.New(repotest.Open(t), "BR")

	p, err := svc.Create(ctx, patient.CreatePatientRequest{
		Email:       " Ana.Silva@Example.com ",
		DisplayName: " Ana Silva ",
		Phone:       ptr("(11) 98765-4321"),
		OptInNews:   true,
	})
	require.NoError(t, err)
	assert.Equal(t, "ana.silva@example.com", p.Email)
	assert.Equal(t, "Ana Silva", p.DisplayName)
	require.NotNil(t, p.Phone)
	assert.Equal(t, "+5511987654321", *p.Phone)
	assert.False(t, p.IsActivated())

	got, err := svc.Get(ctx, p.ID)
	require.NoError(t, err)
	assert.Equal(t, p.ID, got.ID)
	assert.True(t, got.OptInNews)

	_, err = svc.Get(ctx, uuid.New())
	assert.ErrorIs(t, err, patient.ErrPatientNotFound)
}

func TestCreateRejectsBadInput(t *testing.T) {
	svc := patient.New(repotest.Open(t), "BR")

	tests := []struct {
		name string
		req  patient.CreatePatientRequest
		want error
	}{
		{"bad email", patient.CreatePatientRequest{Email: "nope", DisplayName: "x"}, patient.ErrInvalidEmail},
		{"named email", patient.CreatePatientRequest{Email: "Ana <ana@example.com>", DisplayName: "x"}, patient.ErrInvalidEmail},
		{"no name", patient.CreatePatientRequest{Email: "ana@example.com"}, patient.ErrDisplayNameNeeded},
		{"bad phone", patient.CreatePatientRequest{Email: "ana@example.com", DisplayName: "x", Phone: ptr("123")}, patient.ErrInvalidPhone},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Create(context.Background(), tt.req)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}
