package inhibit

import (
	"context"
	"fmt"
	"testing"

	"github.com/reverie-player/reverie/internal/inhibit/mocks"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"
)

func TestSuspendInhibitor_AcquireRelease(t *testing.T) {
	tests := []struct {
		name       string
		setupMock  func(*mocks.MockDBusClient)
		run        func(*testing.T, *SuspendInhibitor)
		wantActive bool
	}{
		{
			name: "Acquire holds a handle",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().Inhibit("reverie", "Playing video").Return(uint32(7), nil)
			},
			run: func(t *testing.T, s *SuspendInhibitor) {
				if err := s.Acquire(context.Background(), "Playing video"); err != nil {
					t.Fatalf("Acquire failed: %v", err)
				}
			},
			wantActive: true,
		},
		{
			name: "Second acquire releases the first handle",
			setupMock: func(m *mocks.MockDBusClient) {
				first := m.EXPECT().Inhibit("reverie", "Playing video").Return(uint32(7), nil)
				release := m.EXPECT().UnInhibit(uint32(7)).Return(nil).After(first)
				m.EXPECT().Inhibit("reverie", "Playing video").Return(uint32(8), nil).After(release)
			},
			run: func(t *testing.T, s *SuspendInhibitor) {
				if err := s.Acquire(context.Background(), "Playing video"); err != nil {
					t.Fatalf("first Acquire failed: %v", err)
				}
				if err := s.Acquire(context.Background(), "Playing video"); err != nil {
					t.Fatalf("second Acquire failed: %v", err)
				}
			},
			wantActive: true,
		},
		{
			name: "Release drops the handle",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().Inhibit("reverie", "Playing video").Return(uint32(9), nil)
				m.EXPECT().UnInhibit(uint32(9)).Return(nil)
			},
			run: func(t *testing.T, s *SuspendInhibitor) {
				if err := s.Acquire(context.Background(), "Playing video"); err != nil {
					t.Fatalf("Acquire failed: %v", err)
				}
				if err := s.Release(context.Background()); err != nil {
					t.Fatalf("Release failed: %v", err)
				}
			},
			wantActive: false,
		},
		{
			name:      "Release without a handle is a no-op",
			setupMock: func(m *mocks.MockDBusClient) {},
			run: func(t *testing.T, s *SuspendInhibitor) {
				if err := s.Release(context.Background()); err != nil {
					t.Fatalf("Release should be a no-op, got %v", err)
				}
			},
			wantActive: false,
		},
		{
			name: "Double release only uninhibits once",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().Inhibit("reverie", "Playing video").Return(uint32(3), nil)
				m.EXPECT().UnInhibit(uint32(3)).Return(nil)
			},
			run: func(t *testing.T, s *SuspendInhibitor) {
				if err := s.Acquire(context.Background(), "Playing video"); err != nil {
					t.Fatalf("Acquire failed: %v", err)
				}
				if err := s.Release(context.Background()); err != nil {
					t.Fatalf("Release failed: %v", err)
				}
				if err := s.Release(context.Background()); err != nil {
					t.Fatalf("second Release should be a no-op, got %v", err)
				}
			},
			wantActive: false,
		},
		{
			name: "Failed acquire leaves no handle",
			setupMock: func(m *mocks.MockDBusClient) {
				m.EXPECT().Inhibit("reverie", "Playing video").
					Return(uint32(0), fmt.Errorf("bus error"))
			},
			run: func(t *testing.T, s *SuspendInhibitor) {
				if err := s.Acquire(context.Background(), "Playing video"); err == nil {
					t.Fatal("expected error from Acquire")
				}
			},
			wantActive: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			defer ctrl.Finish()

			mockClient := mocks.NewMockDBusClient(ctrl)
			tt.setupMock(mockClient)

			s := NewSuspendInhibitor(zap.NewNop(), mockClient, "reverie")
			tt.run(t, s)

			if s.Active() != tt.wantActive {
				t.Errorf("Active() = %v, want %v", s.Active(), tt.wantActive)
			}
		})
	}
}

func TestSuspendInhibitor_CancelledContext(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()

	// No Inhibit call may be issued for a dead context
	mockClient := mocks.NewMockDBusClient(ctrl)
	s := NewSuspendInhibitor(zap.NewNop(), mockClient, "reverie")

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if err := s.Acquire(ctx, "Playing video"); err == nil {
		t.Fatal("expected context error")
	}
	if s.Active() {
		t.Error("no handle should be held after cancelled acquire")
	}
}
