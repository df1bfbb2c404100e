package service

import (
	"context"
	"testing"

	"uniadmin-console/internal/mocks"
	"uniadmin-console/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
)

func recordSpans(t *testing.T) *tracetest.SpanRecorder {
	t.Helper()
	recorder := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(recorder))
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return recorder
}

func spanNames(recorder *tracetest.SpanRecorder) []string {
	var names []string
	for _, s := range recorder.Ended() {
		names = append(names, s.Name())
	}
	return names
}

func TestReadsAreTraced(t *testing.T) {
	recorder := recordSpans(t)
	ctx := context.Background()

	users := new(mocks.MockUserGateway)
	users.On("GetUser", mock.Anything, "nimal").Return(&models.User{UserName: "nimal"}, nil).Once()
	_, err := newUserService(users, nil).GetUser(ctx, "nimal")
	require.NoError(t, err)

	jobs := new(mocks.MockVacancyGateway)
	jobs.On("GetJob", mock.Anything, "a1").Return(&sampleVacancies()[0], nil).Once()
	_, err = newVacancyService(jobs, nil).GetVacancy(ctx, "a1")
	require.NoError(t, err)

	names := spanNames(recorder)
	assert.Contains(t, names, "UserService.GetUser")
	assert.Contains(t, names, "VacancyService.GetVacancy")
}
