// Package pinning uploads content to a content-addressed pinning service and
// derives the metadata document an asset record points at.
package pinning

import (
	"context"
	"time"

	"github.com/quantumauth-io/quantum-go-utils/log"

	"github.com/quantumauth-io/algo-quickstart/internal/constants"
	"github.com/quantumauth-io/algo-quickstart/internal/failure"
)

// Store is a remote or local pinning backend. Both calls return a locator of
// the form ipfs://<cid>.
type Store interface {
	PinFile(ctx context.Context, name string, content []byte) (string, error)
	PinJSON(ctx context.Context, name string, doc any) (string, error)
}

// Fetcher is implemented by stores that can serve pinned bytes back.
type Fetcher interface {
	Fetch(ctx context.Context, locator string) ([]byte, error)
}

// Metadata is the document pinned next to the content. Image always holds
// the content locator, never the bytes.
type Metadata struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Image       string         `json:"image"`
	Properties  map[string]any `json:"properties"`
}

type Result struct {
	ContentLocator  string
	MetadataLocator string
}

type Options struct {
	ImageName           string
	MetadataName        string
	MetadataTitle       string
	MetadataDescription string
	Timeout             time.Duration
}

func DefaultOptions() Options {
	return Options{
		ImageName:           constants.DefaultImagePinName,
		MetadataName:        constants.DefaultMetadataPinName,
		MetadataTitle:       constants.DefaultMetadataName,
		MetadataDescription: constants.DefaultMetadataDesc,
	}
}

type Service struct {
	store Store
	opts  Options
}

func NewService(store Store, opts Options) *Service {
	def := DefaultOptions()
	if opts.ImageName == "" {
		opts.ImageName = def.ImageName
	}
	if opts.MetadataName == "" {
		opts.MetadataName = def.MetadataName
	}
	if opts.MetadataTitle == "" {
		opts.MetadataTitle = def.MetadataTitle
	}
	if opts.MetadataDescription == "" {
		opts.MetadataDescription = def.MetadataDescription
	}
	return &Service{store: store, opts: opts}
}

// Pin uploads content, then a metadata document referencing it. The two
// uploads are independent: when the second fails the first stays pinned.
// Nothing is retried.
func (s *Service) Pin(ctx context.Context, content []byte, filename string) (Result, error) {
	if len(content) == 0 {
		return Result{}, failure.MissingContent("pinning: no content to pin")
	}
	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	name := filename
	if name == "" {
		name = s.opts.ImageName
	}

	contentLoc, err := s.store.PinFile(ctx, name, content)
	if err != nil {
		return Result{}, failure.WithContext(ctx, failure.Wrap(err, failure.ErrPinService, "pinning: upload content"))
	}

	doc := Metadata{
		Name:        s.opts.MetadataTitle,
		Description: s.opts.MetadataDescription,
		Image:       contentLoc,
		Properties:  map[string]any{},
	}
	metaLoc, err := s.store.PinJSON(ctx, s.opts.MetadataName, doc)
	if err != nil {
		log.Warn("metadata pin failed after content was pinned", "content", contentLoc, "error", err)
		return Result{}, failure.WithContext(ctx, failure.Wrap(err, failure.ErrPinService, "pinning: upload metadata"))
	}

	log.Info("pinned content and metadata",
		"filename", name,
		"size", len(content),
		"content", contentLoc,
		"metadata", metaLoc,
	)
	return Result{ContentLocator: contentLoc, MetadataLocator: metaLoc}, nil
}
