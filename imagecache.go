package gridview

import (
	"fmt"
	"image"
	_ "image/jpeg" // register decoders for LoadImageFile
	_ "image/png"
	"os"
	"sync"

	_ "golang.org/x/image/webp"
)

// ImageLoader produces an image, typically by reading and decoding a file.
// Loaders run on their own goroutine.
type ImageLoader func() (image.Image, error)

type imageResult struct {
	key string
	img image.Image
	err error
}

// ImageCache holds decoded images by key for ImageItem sources. Loads run in
// the background and their results are handed back on the dispatch goroutine
// by Engine.Update, so callbacks never race with rendering.
type ImageCache struct {
	images  map[string]image.Image
	pending map[string][]func(image.Image, error)
	results chan imageResult
	redraw  func()

	wg     sync.WaitGroup
	closed bool
}

func newImageCache(redraw func()) *ImageCache {
	return &ImageCache{
		images:  make(map[string]image.Image),
		pending: make(map[string][]func(image.Image, error)),
		results: make(chan imageResult, 16),
		redraw:  redraw,
	}
}

// Get returns the image stored under key.
func (c *ImageCache) Get(key string) (image.Image, bool) {
	img, ok := c.images[key]
	return img, ok
}

// Put stores img under key, replacing any previous image.
func (c *ImageCache) Put(key string, img image.Image) {
	if img == nil {
		delete(c.images, key)
		return
	}
	c.images[key] = img
	c.redraw()
}

// Len returns the number of cached images.
func (c *ImageCache) Len() int { return len(c.images) }

// Pending reports whether a load for key is in flight.
func (c *ImageCache) Pending(key string) bool {
	_, ok := c.pending[key]
	return ok
}

// LoadAsync runs load in the background and stores the result under key.
// done, when non-nil, runs on the dispatch goroutine once the result is
// delivered. A key already cached completes on the next drain without
// reloading; concurrent requests for one key share a single load.
func (c *ImageCache) LoadAsync(key string, load ImageLoader, done func(image.Image, error)) {
	if c.closed {
		if done != nil {
			done(nil, fmt.Errorf("gridview: image cache closed"))
		}
		return
	}
	if img, ok := c.images[key]; ok {
		if done != nil {
			done(img, nil)
		}
		return
	}
	_, inFlight := c.pending[key]
	c.pending[key] = append(c.pending[key], done)
	if inFlight {
		return
	}

	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		img, err := load()
		if err == nil && img == nil {
			err = fmt.Errorf("gridview: image %q: loader returned nil", key)
		}
		c.results <- imageResult{key: key, img: img, err: err}
	}()
}

// drain delivers finished loads without blocking. It returns the number of
// results handled.
func (c *ImageCache) drain() int {
	n := 0
	for {
		select {
		case res := <-c.results:
			c.deliver(res)
			n++
		default:
			return n
		}
	}
}

func (c *ImageCache) deliver(res imageResult) {
	waiters := c.pending[res.key]
	delete(c.pending, res.key)
	if res.err != nil {
		Logger().Debug("gridview: image load failed", "key", res.key, "err", res.err)
	} else {
		c.images[res.key] = res.img
		c.redraw()
	}
	for _, done := range waiters {
		if done != nil {
			done(res.img, res.err)
		}
	}
}

// Wait blocks until every in-flight load has finished, then delivers the
// results. Intended for tests and headless tools.
func (c *ImageCache) Wait() {
	done := make(chan struct{})
	go func() {
		c.wg.Wait()
		close(done)
	}()
	for {
		select {
		case res := <-c.results:
			c.deliver(res)
		case <-done:
			c.drain()
			return
		}
	}
}

// Close waits for in-flight loads, drops their results and empties the cache.
func (c *ImageCache) Close() {
	if c.closed {
		return
	}
	c.closed = true
	go func() {
		for range c.results {
		}
	}()
	c.wg.Wait()
	close(c.results)
	clear(c.images)
	clear(c.pending)
}

// LoadImageFile returns a loader decoding the PNG, JPEG or WebP file at path.
func LoadImageFile(path string) ImageLoader {
	return func() (image.Image, error) {
		f, err := os.Open(path)
		if err != nil {
			return nil, fmt.Errorf("gridview: open image: %w", err)
		}
		defer f.Close()
		img, _, err := image.Decode(f)
		if err != nil {
			return nil, fmt.Errorf("gridview: decode %s: %w", path, err)
		}
		return img, nil
	}
}
