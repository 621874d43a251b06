package overlay

import (
	"encoding/json"
	"io"
	"sync"
	"testing"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dudu/facehighlight/internal/geometry"
)

type published struct {
	topic   string
	payload []byte
}

type fakeClient struct {
	mqtt.Client

	mu           sync.Mutex
	messages     []published
	disconnected bool
}

func (c *fakeClient) Publish(topic string, qos byte, retained bool, payload interface{}) mqtt.Token {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.messages = append(c.messages, published{topic: topic, payload: payload.([]byte)})
	return nil
}

func (c *fakeClient) Disconnect(quiesce uint) {
	c.disconnected = true
}

func quietLogger() *logrus.Logger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

func TestPublisher_PublishesShowAndHide(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, "facehighlight/overlay", "session-1", quietLogger())

	p.NextFrame()
	p.Show(geometry.NewRect(10, 20, 30, 40))
	p.NextFrame()
	p.Hide()

	require.Len(t, client.messages, 2)

	assert.Equal(t, "facehighlight/overlay/show", client.messages[0].topic)
	var show Message
	require.NoError(t, json.Unmarshal(client.messages[0].payload, &show))
	assert.Equal(t, "session-1", show.Session)
	assert.Equal(t, p.Session(), show.Session)
	assert.Equal(t, uint64(1), show.Frame)
	assert.Equal(t, ActionShow, show.Action)
	assert.Equal(t, &RectMsg{X: 10, Y: 20, Width: 30, Height: 40}, show.Rect)

	assert.Equal(t, "facehighlight/overlay/hide", client.messages[1].topic)
	var hide Message
	require.NoError(t, json.Unmarshal(client.messages[1].payload, &hide))
	assert.Equal(t, uint64(2), hide.Frame)
	assert.Equal(t, ActionHide, hide.Action)
	assert.Nil(t, hide.Rect)
}

func TestPublisher_Close(t *testing.T) {
	client := &fakeClient{}
	p := newPublisher(client, "t", "s", quietLogger())

	assert.NoError(t, p.Close())
	assert.True(t, client.disconnected)
}
