package gitsync

import (
	"context"

	"github.com/stretchr/testify/mock"

	"github.com/arthur-debert/reposync/pkg/runner"
)

type mockProbe struct {
	mock.Mock
}

func (m *mockProbe) ChangedFiles(ctx context.Context, dir string) ([]string, error) {
	args := m.Called(ctx, dir)
	files, _ := args.Get(0).([]string)
	return files, args.Error(1)
}

func (m *mockProbe) HeadSubject(ctx context.Context, dir string) (string, error) {
	args := m.Called(ctx, dir)
	return args.String(0), args.Error(1)
}

type mockRunner struct {
	mock.Mock
}

func (m *mockRunner) Run(ctx context.Context, commands []runner.Command) error {
	args := m.Called(ctx, commands)
	return args.Error(0)
}

func (m *mockRunner) Output(ctx context.Context, dir string, cmd runner.Command) (string, error) {
	args := m.Called(ctx, dir, cmd)
	return args.String(0), args.Error(1)
}
