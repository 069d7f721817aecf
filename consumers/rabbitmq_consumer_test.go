package consumers

import (
	"testing"

	"github.com/streadway/amqp"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type fakeAcknowledger struct {
	acked   int
	nacked  int
	requeue bool
}

func (a *fakeAcknowledger) Ack(tag uint64, multiple bool) error {
	a.acked++
	return nil
}

func (a *fakeAcknowledger) Nack(tag uint64, multiple, requeue bool) error {
	a.nacked++
	a.requeue = requeue
	return nil
}

func (a *fakeAcknowledger) Reject(tag uint64, requeue bool) error {
	a.nacked++
	return nil
}

type fakeInvalidator struct {
	invalidated []string
}

func (f *fakeInvalidator) InvalidateProperty(id string) {
	f.invalidated = append(f.invalidated, id)
}

func deliver(t *testing.T, body string) (*fakeAcknowledger, *fakeInvalidator) {
	t.Helper()
	ack := &fakeAcknowledger{}
	properties := &fakeInvalidator{}
	c := &RabbitMQConsumer{properties: properties, logger: zap.NewNop()}

	c.processMessage(amqp.Delivery{Acknowledger: ack, DeliveryTag: 1, Body: []byte(body)})
	return ack, properties
}

func TestProcessMessage_UpdateInvalidates(t *testing.T) {
	ack, properties := deliver(t, `{"action":"update","property_id":"p1"}`)

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, []string{"p1"}, properties.invalidated)
}

func TestProcessMessage_DeleteInvalidates(t *testing.T) {
	ack, properties := deliver(t, `{"action":"delete","property_id":"p2"}`)

	assert.Equal(t, 1, ack.acked)
	assert.Equal(t, []string{"p2"}, properties.invalidated)
}

func TestProcessMessage_CreateOnlyAcks(t *testing.T) {
	ack, properties := deliver(t, `{"action":"create","property_id":"p3"}`)

	assert.Equal(t, 1, ack.acked)
	assert.Empty(t, properties.invalidated)
}

func TestProcessMessage_Rejects(t *testing.T) {
	for _, body := range []string{
		`not json`,
		`{"action":"update"}`,
		`{"action":"archive","property_id":"p1"}`,
	} {
		ack, properties := deliver(t, body)

		assert.Equal(t, 0, ack.acked, body)
		assert.Equal(t, 1, ack.nacked, body)
		assert.False(t, ack.requeue, body)
		assert.Empty(t, properties.invalidated, body)
	}
}
