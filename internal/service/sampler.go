package service

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"sync"

	"github.com/google/uuid"
	"github.com/segmentio/kafka-go"

	"geosampler/internal/enrich"
	"geosampler/internal/metrics"
	"geosampler/internal/models"
	"geosampler/internal/territory"
)

const DefaultBatchSize = 100

// Publisher delivers a batch of sample locations to the crawling layer.
type Publisher interface {
	Publish(ctx context.Context, locs []*models.SampleLocation) error
}

// BundleProvider returns the territory bundle requests are answered from.
type BundleProvider func(ctx context.Context) (*territory.Bundle, error)

// CachedBundle adapts a territory cache to a BundleProvider.
func CachedBundle(cache *territory.Cache, name string, build territory.BuildFunc) BundleProvider {
	return func(ctx context.Context) (*territory.Bundle, error) {
		return cache.Get(ctx, name, build)
	}
}

// Sampler answers sample requests with the locations of the requested
// territories.
type Sampler struct {
	bundles       BundleProvider
	publisher     Publisher
	defaultRadius float64
	batchSize     int
}

func NewSampler(bundles BundleProvider, publisher Publisher, defaultRadiusKm float64) *Sampler {
	return &Sampler{
		bundles:       bundles,
		publisher:     publisher,
		defaultRadius: defaultRadiusKm,
		batchSize:     DefaultBatchSize,
	}
}

// WithBatchSize sets how many locations are published per call.
func (s *Sampler) WithBatchSize(n int) *Sampler {
	if n > 0 {
		s.batchSize = n
	}
	return s
}

// Handle generates, decorates and publishes every location of req. It
// returns the number of locations published.
func (s *Sampler) Handle(ctx context.Context, req models.SampleRequest) (int, error) {
	n, err := s.handle(ctx, req)
	status := "ok"
	if err != nil {
		status = "error"
	}
	metrics.RequestsHandled.WithLabelValues(status).Inc()
	return n, err
}

func (s *Sampler) handle(ctx context.Context, req models.SampleRequest) (int, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	radius := req.RadiusKm
	if radius == 0 {
		radius = s.defaultRadius
	}

	bundle, err := s.bundles(ctx)
	if bundle == nil {
		return 0, fmt.Errorf("failed to load territory bundle: %w", err)
	}
	if err != nil {
		// The bundle is usable even though it could not be cached.
		log.Printf("Request %s: %v", req.ID, err)
	}

	chain, err := BundleLocations(bundle, radius, req.Territories...)
	if err != nil {
		return 0, fmt.Errorf("request %s: %w", req.ID, err)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	locs := enrich.LocationPipeline(req.ID).Process(ctx, chain.Locations(ctx))

	published := 0
	batch := make([]*models.SampleLocation, 0, s.batchSize)
	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := s.publisher.Publish(ctx, batch); err != nil {
			return fmt.Errorf("request %s: failed to publish %d locations: %w", req.ID, len(batch), err)
		}
		published += len(batch)
		batch = batch[:0]
		return nil
	}

	for loc := range locs {
		batch = append(batch, loc)
		if len(batch) == s.batchSize {
			if err := flush(); err != nil {
				return published, err
			}
		}
	}
	if err := ctx.Err(); err != nil {
		return published, err
	}
	if err := flush(); err != nil {
		return published, err
	}
	log.Printf("Request %s: published %d locations at radius %.1fkm", req.ID, published, radius)
	return published, nil
}

// Run handles requests until in is closed or ctx is cancelled. Failed
// requests are logged and do not stop the loop.
func (s *Sampler) Run(ctx context.Context, in <-chan *Fetched[models.SampleRequest]) {
	for {
		select {
		case <-ctx.Done():
			return
		case f, ok := <-in:
			if !ok {
				return
			}
			if _, err := s.Handle(ctx, f.Data); err != nil {
				log.Printf("Failed to handle request from offset %d: %v", f.Message.Offset, err)
			}
		}
	}
}

// JSONLinesPublisher writes one JSON document per location.
type JSONLinesPublisher struct {
	mu  sync.Mutex
	enc *json.Encoder
}

func NewJSONLinesPublisher(w io.Writer) *JSONLinesPublisher {
	return &JSONLinesPublisher{enc: json.NewEncoder(w)}
}

func (p *JSONLinesPublisher) Publish(_ context.Context, locs []*models.SampleLocation) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, loc := range locs {
		if err := p.enc.Encode(loc); err != nil {
			return err
		}
	}
	return nil
}

// MessageSender is satisfied by kafkaclient.KafkaProducer.
type MessageSender interface {
	Send(ctx context.Context, msgs ...kafka.Message) error
}

// KafkaPublisher publishes locations as JSON messages keyed by geohash, so
// nearby locations share a partition.
type KafkaPublisher struct {
	sender MessageSender
}

func NewKafkaPublisher(sender MessageSender) *KafkaPublisher {
	return &KafkaPublisher{sender: sender}
}

func (p *KafkaPublisher) Publish(ctx context.Context, locs []*models.SampleLocation) error {
	msgs := make([]kafka.Message, 0, len(locs))
	for _, loc := range locs {
		value, err := json.Marshal(loc)
		if err != nil {
			return fmt.Errorf("failed to encode location: %w", err)
		}
		msg := kafka.Message{Key: []byte(loc.Geohash), Value: value}
		if loc.RunID != "" {
			msg.Headers = []kafka.Header{{Key: "run_id", Value: []byte(loc.RunID)}}
		}
		msgs = append(msgs, msg)
	}
	return p.sender.Send(ctx, msgs...)
}
