// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package notify

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/research-digest/pkg/types"
)

type fakePublisher struct {
	err      error
	subjects []string
	payloads [][]byte
}

func (p *fakePublisher) Publish(subject string, data []byte) error {
	if p.err != nil {
		return p.err
	}
	p.subjects = append(p.subjects, subject)
	p.payloads = append(p.payloads, data)
	return nil
}

func TestDigestCompletedPublishesEvent(t *testing.T) {
	pub := &fakePublisher{}
	n := New(pub, "", nil)

	n.DigestCompleted(context.Background(), &types.Digest{
		Date:   "2024-01-15",
		Papers: []types.Paper{{ID: "2401.00001"}, {ID: "2401.00002"}},
	})

	require.Len(t, pub.payloads, 1)
	assert.Equal(t, DefaultSubject, pub.subjects[0])

	var ev Event
	require.NoError(t, json.Unmarshal(pub.payloads[0], &ev))
	assert.Equal(t, EventDigestCompleted, ev.Type)
	assert.Equal(t, 2, ev.PaperCount)
	require.NotNil(t, ev.Digest)
	assert.Equal(t, "2024-01-15", ev.Digest.Date)
}

func TestDigestCompletedSwallowsErrors(t *testing.T) {
	pub := &fakePublisher{err: errors.New("nats down")}
	n := New(pub, "custom.subject", nil)

	assert.NotPanics(t, func() {
		n.DigestCompleted(context.Background(), &types.Digest{Date: "2024-01-15"})
	})
	assert.Empty(t, pub.payloads)
}

func TestNilNotifierIsNoop(t *testing.T) {
	var n *Notifier
	assert.NotPanics(t, func() {
		n.DigestCompleted(context.Background(), &types.Digest{})
		n.Close()
	})
}

func TestConnectWithoutURL(t *testing.T) {
	n, err := Connect(types.NotifyConfig{}, nil)
	require.NoError(t, err)
	assert.Nil(t, n)
}
