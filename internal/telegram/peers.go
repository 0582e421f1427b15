package telegram

import (
	"fmt"
	"strings"

	"github.com/gotd/td/tg"

	"github.com/danhigham/tgsend/internal/domain"
)

// lookupFromResolved picks the entity the resolved peer points at. Chats
// other than basic groups (forbidden, migrated) yield nothing.
func lookupFromResolved(r *tg.ContactsResolvedPeer) domain.HandleLookup {
	var l domain.HandleLookup
	if r == nil {
		return l
	}

	switch p := r.Peer.(type) {
	case *tg.PeerUser:
		for _, u := range r.Users {
			user, ok := u.(*tg.User)
			if ok && user.ID == p.UserID {
				peer := domain.UserPeer(user.ID, user.AccessHash)
				l.User = &peer
				break
			}
		}
	case *tg.PeerChat:
		for _, c := range r.Chats {
			chat, ok := c.(*tg.Chat)
			if ok && chat.ID == p.ChatID {
				peer := domain.BasicGroupPeer(chat.ID)
				l.BasicGroup = &peer
				break
			}
		}
	case *tg.PeerChannel:
		for _, c := range r.Chats {
			channel, ok := c.(*tg.Channel)
			if ok && channel.ID == p.ChannelID {
				peer := domain.ChannelPeer(channel.ID, channel.AccessHash)
				l.Channel = &peer
				break
			}
		}
	}
	return l
}

// contactsFromUsers converts a contact list, skipping empty users.
func contactsFromUsers(users []tg.UserClass) []domain.Contact {
	contacts := make([]domain.Contact, 0, len(users))
	for _, u := range users {
		user, ok := u.(*tg.User)
		if !ok {
			continue
		}
		contacts = append(contacts, domain.Contact{
			ID:         user.ID,
			AccessHash: user.AccessHash,
			Phone:      internationalPhone(user.Phone),
			Username:   user.Username,
			FirstName:  user.FirstName,
			LastName:   user.LastName,
		})
	}
	return contacts
}

// internationalPhone adds the leading plus Telegram leaves off.
func internationalPhone(phone string) string {
	if phone == "" || strings.HasPrefix(phone, domain.PhoneMarker) {
		return phone
	}
	return domain.PhoneMarker + phone
}

func identityFromUser(u *tg.User) domain.Identity {
	return domain.Identity{
		ID:        u.ID,
		Username:  u.Username,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Phone:     internationalPhone(u.Phone),
	}
}

// inputPeer builds the addressable form of a resolved peer.
func inputPeer(p domain.Peer) (tg.InputPeerClass, error) {
	switch p.Kind {
	case domain.PeerUser:
		return &tg.InputPeerUser{UserID: p.ID, AccessHash: p.AccessHash}, nil
	case domain.PeerBasicGroup:
		return &tg.InputPeerChat{ChatID: p.ID}, nil
	case domain.PeerChannel:
		return &tg.InputPeerChannel{ChannelID: p.ID, AccessHash: p.AccessHash}, nil
	default:
		return nil, fmt.Errorf("unsupported peer kind: %v", p.Kind)
	}
}

// sentMessageID finds the id of the message a send produced.
func sentMessageID(upd tg.UpdatesClass) (int, bool) {
	switch u := upd.(type) {
	case *tg.UpdateShortSentMessage:
		return u.ID, true
	case *tg.Updates:
		return messageIDFromUpdates(u.Updates)
	case *tg.UpdatesCombined:
		return messageIDFromUpdates(u.Updates)
	default:
		return 0, false
	}
}

func messageIDFromUpdates(updates []tg.UpdateClass) (int, bool) {
	for _, u := range updates {
		if m, ok := u.(*tg.UpdateMessageID); ok {
			return m.ID, true
		}
	}
	for _, u := range updates {
		switch m := u.(type) {
		case *tg.UpdateNewMessage:
			return m.Message.GetID(), true
		case *tg.UpdateNewChannelMessage:
			return m.Message.GetID(), true
		}
	}
	return 0, false
}
