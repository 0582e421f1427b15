package delivery_test

import (
	"context"
	"errors"
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/danhigham/tgsend/internal/delivery"
	"github.com/danhigham/tgsend/internal/domain"
)

type fakeMessenger struct {
	lookup     domain.HandleLookup
	resolveErr error
	contacts   []domain.Contact
	contactErr error
	sendErr    error
	messageID  int

	resolved     []string
	contactCalls int
	sent         []sentMessage
}

type sentMessage struct {
	peer domain.Peer
	text string
}

func (f *fakeMessenger) ResolveHandle(ctx context.Context, name string) (domain.HandleLookup, error) {
	f.resolved = append(f.resolved, name)
	return f.lookup, f.resolveErr
}

func (f *fakeMessenger) ListContacts(ctx context.Context) ([]domain.Contact, error) {
	f.contactCalls++
	return f.contacts, f.contactErr
}

func (f *fakeMessenger) SendMessage(ctx context.Context, peer domain.Peer, text string) (int, error) {
	f.sent = append(f.sent, sentMessage{peer: peer, text: text})
	if f.sendErr != nil {
		return 0, f.sendErr
	}
	return f.messageID, nil
}

func (f *fakeMessenger) networkCalls() int {
	return len(f.resolved) + f.contactCalls + len(f.sent)
}

func peerPtr(p domain.Peer) *domain.Peer {
	return &p
}

func TestResolveAndSend_Handle(t *testing.T) {
	m := &fakeMessenger{
		lookup:    domain.HandleLookup{User: peerPtr(domain.UserPeer(42, 420))},
		messageID: 777,
	}
	s := delivery.NewSender(m, zaptest.NewLogger(t))

	res, err := s.ResolveAndSend(context.Background(), "@alice", "hello *world*")
	if err != nil {
		t.Fatalf("ResolveAndSend() error: %v", err)
	}
	if res.MessageID != 777 {
		t.Errorf("MessageID = %d, want 777", res.MessageID)
	}
	if len(m.resolved) != 1 || m.resolved[0] != "alice" {
		t.Errorf("resolved = %v, want [alice]", m.resolved)
	}
	if len(m.sent) != 1 {
		t.Fatalf("sent %d messages, want 1", len(m.sent))
	}
	if m.sent[0].text != "hello *world*" {
		t.Errorf("text = %q, want literal body", m.sent[0].text)
	}
	if m.sent[0].peer != domain.UserPeer(42, 420) {
		t.Errorf("peer = %+v, want user 42", m.sent[0].peer)
	}
}

func TestResolve_HandlePriority(t *testing.T) {
	tests := []struct {
		name   string
		lookup domain.HandleLookup
		want   domain.PeerKind
	}{
		{"user first", domain.HandleLookup{
			User:    peerPtr(domain.UserPeer(1, 1)),
			Channel: peerPtr(domain.ChannelPeer(3, 3)),
		}, domain.PeerUser},
		{"group before channel", domain.HandleLookup{
			BasicGroup: peerPtr(domain.BasicGroupPeer(2)),
			Channel:    peerPtr(domain.ChannelPeer(3, 3)),
		}, domain.PeerBasicGroup},
		{"channel", domain.HandleLookup{
			Channel: peerPtr(domain.ChannelPeer(3, 3)),
		}, domain.PeerChannel},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := delivery.NewSender(&fakeMessenger{lookup: tt.lookup}, nil)
			p, err := s.Resolve(context.Background(), "@name")
			if err != nil {
				t.Fatalf("Resolve() error: %v", err)
			}
			if p.Kind != tt.want {
				t.Errorf("Kind = %v, want %v", p.Kind, tt.want)
			}
		})
	}
}

func TestResolveAndSend_HandleNotFound(t *testing.T) {
	m := &fakeMessenger{}
	s := delivery.NewSender(m, nil)

	_, err := s.ResolveAndSend(context.Background(), "@ghost", "hi")
	if !errors.Is(err, delivery.ErrInvalidTarget) {
		t.Fatalf("error = %v, want ErrInvalidTarget", err)
	}
	if len(m.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(m.sent))
	}
}

func TestResolveAndSend_Phone(t *testing.T) {
	m := &fakeMessenger{
		contacts: []domain.Contact{
			{ID: 1, AccessHash: 10, Phone: "+15550000000"},
			{ID: 2, AccessHash: 20, Phone: "+15551234567"},
			{ID: 3, AccessHash: 30, Phone: "+15551234567"},
		},
		messageID: 5,
	}
	s := delivery.NewSender(m, nil)

	res, err := s.ResolveAndSend(context.Background(), "+15551234567", "hi")
	if err != nil {
		t.Fatalf("ResolveAndSend() error: %v", err)
	}
	if res.Peer != domain.UserPeer(2, 20) {
		t.Errorf("Peer = %+v, want first match (user 2)", res.Peer)
	}
	if len(m.sent) != 1 {
		t.Errorf("sent %d messages, want 1", len(m.sent))
	}
}

func TestResolveAndSend_PhoneNoMatch(t *testing.T) {
	m := &fakeMessenger{
		contacts: []domain.Contact{
			{ID: 1, Phone: "15551234567"},
			{ID: 2, Phone: "+155512345678"},
		},
	}
	s := delivery.NewSender(m, nil)

	_, err := s.ResolveAndSend(context.Background(), "+15551234567", "hi")
	if !errors.Is(err, delivery.ErrInvalidTarget) {
		t.Fatalf("error = %v, want ErrInvalidTarget", err)
	}
	if len(m.sent) != 0 {
		t.Errorf("sent %d messages, want 0", len(m.sent))
	}
}

func TestResolveAndSend_UnrecognisedTarget(t *testing.T) {
	for _, target := range []string{"nobody", "", "@", "15551234567"} {
		m := &fakeMessenger{}
		s := delivery.NewSender(m, nil)

		_, err := s.ResolveAndSend(context.Background(), target, "hi")
		if !errors.Is(err, delivery.ErrInvalidTarget) {
			t.Errorf("%q: error = %v, want ErrInvalidTarget", target, err)
		}
		if n := m.networkCalls(); n != 0 {
			t.Errorf("%q: %d network calls, want 0", target, n)
		}
	}
}

func TestResolveAndSend_TransportErrors(t *testing.T) {
	boom := errors.New("rpc error")
	tests := []struct {
		name   string
		m      *fakeMessenger
		target string
	}{
		{"resolve", &fakeMessenger{resolveErr: boom}, "@alice"},
		{"contacts", &fakeMessenger{contactErr: boom}, "+15551234567"},
		{"send", &fakeMessenger{
			lookup:  domain.HandleLookup{User: peerPtr(domain.UserPeer(1, 1))},
			sendErr: boom,
		}, "@alice"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := delivery.NewSender(tt.m, nil)
			_, err := s.ResolveAndSend(context.Background(), tt.target, "hi")

			var sendErr *delivery.SendError
			if !errors.As(err, &sendErr) {
				t.Fatalf("error = %v, want *SendError", err)
			}
			if !errors.Is(err, boom) {
				t.Errorf("error does not wrap cause: %v", err)
			}
			if errors.Is(err, delivery.ErrInvalidTarget) {
				t.Error("transport failure reported as invalid target")
			}
			if len(tt.m.sent) > 1 {
				t.Errorf("sent %d times, want at most 1", len(tt.m.sent))
			}
		})
	}
}

func TestFindContact(t *testing.T) {
	contacts := []domain.Contact{{ID: 1, Phone: "+1"}, {ID: 2, Phone: "+2"}}

	if c, ok := delivery.FindContact(contacts, "+2"); !ok || c.ID != 2 {
		t.Errorf("FindContact(+2) = (%v, %v), want contact 2", c.ID, ok)
	}
	if _, ok := delivery.FindContact(contacts, "+3"); ok {
		t.Error("FindContact(+3) found a contact")
	}
	if _, ok := delivery.FindContact(nil, "+1"); ok {
		t.Error("FindContact on empty list found a contact")
	}
}
