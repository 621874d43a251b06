package overlay

import (
	"encoding/json"
	"fmt"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/dudu/facehighlight/internal/geometry"
)

// Message is the JSON payload published for every renderer instruction
type Message struct {
	Session string   `json:"session"`
	Frame   uint64   `json:"frame"`
	Action  Action   `json:"action"`
	Rect    *RectMsg `json:"rect,omitempty"`
	Time    int64    `json:"time"`
}

// RectMsg is a display-space rectangle on the wire
type RectMsg struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Publisher forwards highlight instructions to an MQTT broker so remote
// surfaces can draw the overlay. Publishing is fire-and-forget.
type Publisher struct {
	client  mqtt.Client
	topic   string
	session string
	frame   atomic.Uint64
	log     *logrus.Logger
}

// NewPublisher connects to the broker and returns a renderer publishing under topic
func NewPublisher(broker, topic string, log *logrus.Logger) (*Publisher, error) {
	session := uuid.New().String()

	opts := mqtt.NewClientOptions().AddBroker(broker).SetClientID("facehighlight-" + session)
	opts.SetKeepAlive(2 * time.Second)
	opts.SetPingTimeout(1 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetAutoReconnect(true)
	opts.OnConnectionLost = func(_ mqtt.Client, err error) {
		log.WithError(err).Warn("MQTT connection lost")
	}

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT broker %s: %w", broker, token.Error())
	}

	log.WithFields(logrus.Fields{"broker": broker, "topic": topic, "session": session}).Info("Connected to MQTT")

	return newPublisher(client, topic, session, log), nil
}

func newPublisher(client mqtt.Client, topic, session string, log *logrus.Logger) *Publisher {
	return &Publisher{
		client:  client,
		topic:   topic,
		session: session,
		log:     log,
	}
}

// Session returns the id stamped on every message
func (p *Publisher) Session() string {
	return p.session
}

// NextFrame advances the frame counter stamped on subsequent messages
func (p *Publisher) NextFrame() {
	p.frame.Add(1)
}

// Show publishes a show instruction
func (p *Publisher) Show(rect geometry.Rect) {
	p.publish(ActionShow, &RectMsg{
		X:      rect.Origin.X,
		Y:      rect.Origin.Y,
		Width:  rect.Width(),
		Height: rect.Height(),
	})
}

// Hide publishes a hide instruction
func (p *Publisher) Hide() {
	p.publish(ActionHide, nil)
}

func (p *Publisher) publish(action Action, rect *RectMsg) {
	payload, err := json.Marshal(Message{
		Session: p.session,
		Frame:   p.frame.Load(),
		Action:  action,
		Rect:    rect,
		Time:    time.Now().UnixMilli(),
	})
	if err != nil {
		p.log.WithError(err).Error("Failed to encode overlay message")
		return
	}
	p.client.Publish(p.topic+"/"+string(action), 0, false, payload)
}

// Close disconnects from the broker
func (p *Publisher) Close() error {
	p.client.Disconnect(250)
	return nil
}
