// Copyright The Linux Foundation and each contributor to LFX.
// SPDX-License-Identifier: MIT

package messaging

import (
	"github.com/nats-io/nats.go/jetstream"
)

// JetStreamMsg adapts a jetstream.Msg to the domain Message interface.
type JetStreamMsg struct {
	msg jetstream.Msg
}

// NewJetStreamMsg wraps a JetStream message for handler consumption.
func NewJetStreamMsg(msg jetstream.Msg) *JetStreamMsg {
	return &JetStreamMsg{msg: msg}
}

func (m *JetStreamMsg) Subject() string {
	return m.msg.Subject()
}

func (m *JetStreamMsg) Data() []byte {
	return m.msg.Data()
}

func (m *JetStreamMsg) Ack() error {
	return m.msg.Ack()
}

// Nak requests redelivery after the consumer's backoff.
func (m *JetStreamMsg) Nak() error {
	return m.msg.Nak()
}
