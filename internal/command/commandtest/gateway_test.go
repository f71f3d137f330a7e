package commandtest

import (
	"context"
	"testing"

	"github.com/bornholm/fileworks/internal/command"
	"github.com/bornholm/fileworks/internal/command/testsuite"
	"github.com/pkg/errors"
)

type fakeFixture struct {
	gateway *Gateway
}

func (f *fakeFixture) HomeDir() string {
	return DefaultHomeDir
}

func (f *fakeFixture) AddFile(t *testing.T, path string) {
	f.gateway.AddFile(path)
}

func (f *fakeFixture) AddDir(t *testing.T, path string) {
	f.gateway.AddDir(path)
}

func TestGateway(t *testing.T) {
	gateway := NewGateway()

	testsuite.RunGatewayTestSuite(t, gateway, &fakeFixture{gateway: gateway})
}

func TestGatewayFailOn(t *testing.T) {
	ctx := context.Background()

	errBroken := errors.New("broken")

	gateway := NewGateway().
		AddFile("/data/ok.txt").
		AddFile("/data/bad.txt").
		FailOn(command.PathRead, "/data/bad.txt", errBroken)

	if _, err := gateway.Invoke(ctx, command.PathRead, command.Params{"path": "/data/ok.txt"}); err != nil {
		t.Fatalf("%+v", errors.WithStack(err))
	}

	_, err := gateway.Invoke(ctx, command.PathRead, command.Params{"path": "/data/bad.txt"})
	if !errors.Is(err, errBroken) {
		t.Fatalf("expected errBroken, got %+v", err)
	}

	if !errors.Is(err, command.ErrHostCommandFailure) {
		t.Fatalf("expected ErrHostCommandFailure, got %+v", err)
	}

	if e, g := 2, len(gateway.CallsTo(command.PathRead)); e != g {
		t.Errorf("len(gateway.CallsTo(command.PathRead)): expected %d, got %d", e, g)
	}
}
