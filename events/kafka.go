package events

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
)

const queueSize = 1024

type job struct {
	room    string
	message string
	closing bool
}

// KafkaPublisher writes each room's transcript to its own topic
// (prefix + room code). Topics are auto-created on first use and deleted
// when the room closes. All broker I/O happens on one background goroutine.
type KafkaPublisher struct {
	broker  string
	prefix  string
	writers map[string]*kafka.Writer
	queue   chan job
	quit    chan struct{}
	done    chan struct{}
	once    sync.Once
}

func NewKafkaPublisher(broker, prefix string) *KafkaPublisher {
	p := &KafkaPublisher{
		broker:  broker,
		prefix:  prefix,
		writers: make(map[string]*kafka.Writer),
		queue:   make(chan job, queueSize),
		quit:    make(chan struct{}),
		done:    make(chan struct{}),
	}
	go p.run()
	return p
}

// Topic returns the topic name used for room.
func (p *KafkaPublisher) Topic(room string) string {
	return p.prefix + room
}

func (p *KafkaPublisher) Publish(room, message string) {
	p.enqueue(job{room: room, message: message})
}

func (p *KafkaPublisher) Close(room string) {
	p.enqueue(job{room: room, closing: true})
}

func (p *KafkaPublisher) enqueue(j job) {
	select {
	case <-p.quit:
	case p.queue <- j:
	default:
		log.Warn().Str("room", j.room).Msg("event queue full, dropping room event")
	}
}

// Shutdown stops the worker after draining queued jobs.
func (p *KafkaPublisher) Shutdown() {
	p.once.Do(func() { close(p.quit) })
	<-p.done
}

func (p *KafkaPublisher) run() {
	defer close(p.done)
	for {
		select {
		case j := <-p.queue:
			p.handle(j)
		case <-p.quit:
			for {
				select {
				case j := <-p.queue:
					p.handle(j)
				default:
					for room := range p.writers {
						p.closeWriter(room)
					}
					return
				}
			}
		}
	}
}

func (p *KafkaPublisher) handle(j job) {
	if j.closing {
		if p.closeWriter(j.room) {
			p.deleteTopic(p.Topic(j.room))
		}
		return
	}
	w := p.writer(j.room)
	if w == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := w.WriteMessages(ctx, kafka.Message{Key: []byte(j.room), Value: []byte(j.message)}); err != nil {
		log.Warn().Err(err).Str("room", j.room).Msg("failed to publish room event")
	}
}

// writer returns the room's writer, creating the topic on first use.
// A room whose topic could not be created keeps a nil writer.
func (p *KafkaPublisher) writer(room string) *kafka.Writer {
	if w, ok := p.writers[room]; ok {
		return w
	}
	topic := p.Topic(room)
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	// dialing the leader creates the topic when the broker auto-creates topics
	conn, err := kafka.DialLeader(ctx, "tcp", p.broker, topic, 0)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to create topic")
		p.writers[room] = nil
		return nil
	}
	conn.Close()

	w := &kafka.Writer{
		Addr:         kafka.TCP(p.broker),
		Topic:        topic,
		RequiredAcks: kafka.RequireAll,
		Async:        true,
		BatchSize:    1,
	}
	p.writers[room] = w
	return w
}

// closeWriter reports whether the room had a live writer.
func (p *KafkaPublisher) closeWriter(room string) bool {
	w, ok := p.writers[room]
	delete(p.writers, room)
	if !ok || w == nil {
		return false
	}
	if err := w.Close(); err != nil {
		log.Warn().Err(err).Str("room", room).Msg("failed to close room writer")
	}
	return true
}

func (p *KafkaPublisher) deleteTopic(topic string) {
	conn, err := kafka.Dial("tcp", p.broker)
	if err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to dial to remove topic")
		return
	}
	defer conn.Close()

	if err := conn.DeleteTopics(topic); err != nil {
		log.Warn().Err(err).Str("topic", topic).Msg("failed to remove topic")
	}
}
