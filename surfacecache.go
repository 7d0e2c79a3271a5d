package gridview

import (
	"image"
	"math"
	"reflect"

	"github.com/gogpu/gg/cache"
)

// Per-shard capacities of the surface caches. gg's sharded cache has 16
// shards, so a surface holds at most 64 faces and 256 converted images.
const (
	faceCacheShardCapacity  = 4
	imageCacheShardCapacity = 16

	// Face sizes are rounded to a quarter pixel before lookup.
	faceSizeSteps = 4
)

// faceCache holds font faces by quantized pixel size. Text size follows the
// zoom level continuously, so the cache is an LRU rather than a map.
type faceCache[F any] struct {
	lru *cache.ShardedCache[int, F]
}

func newFaceCache[F any]() faceCache[F] {
	return faceCache[F]{lru: cache.NewSharded[int, F](faceCacheShardCapacity, cache.IntHasher)}
}

// get returns the face for size, creating it with mk on a miss. mk receives
// the quantized size. ok is false when mk fails; failures are not cached.
func (c faceCache[F]) get(size float64, mk func(float64) (F, bool)) (F, bool) {
	key := int(math.Round(size * faceSizeSteps))
	if key <= 0 {
		key = 1
	}
	if f, ok := c.lru.Get(key); ok {
		return f, true
	}
	f, ok := mk(float64(key) / faceSizeSteps)
	if ok {
		c.lru.Set(key, f)
	}
	return f, ok
}

func (c faceCache[F]) len() int { return c.lru.Len() }
func (c faceCache[F]) clear()   { c.lru.Clear() }

// imageKey identifies a caller image by dynamic type and address.
type imageKey struct {
	typ reflect.Type
	ptr uintptr
}

// imageEntry pins the source image so its address cannot be reused by a
// different image while the entry is cached.
type imageEntry[V any] struct {
	src image.Image
	val V
}

// imageCache holds surface-native copies of caller images. Only
// pointer-backed images are cached; value types are converted on every
// draw, which also keeps non-comparable image types from reaching a map.
type imageCache[V any] struct {
	lru *cache.ShardedCache[imageKey, imageEntry[V]]
}

func newSurfaceImageCache[V any]() imageCache[V] {
	return imageCache[V]{lru: cache.NewSharded[imageKey, imageEntry[V]](imageCacheShardCapacity, hashImageKey)}
}

func hashImageKey(k imageKey) uint64 { return cache.IntHasher(int(k.ptr)) }

func keyOf(img image.Image) (imageKey, bool) {
	v := reflect.ValueOf(img)
	if v.Kind() != reflect.Pointer || v.IsNil() {
		return imageKey{}, false
	}
	return imageKey{typ: v.Type(), ptr: v.Pointer()}, true
}

// get returns the converted image, calling convert on a miss.
func (c imageCache[V]) get(img image.Image, convert func(image.Image) V) V {
	key, ok := keyOf(img)
	if !ok {
		return convert(img)
	}
	if e, ok := c.lru.Get(key); ok {
		return e.val
	}
	v := convert(img)
	c.lru.Set(key, imageEntry[V]{src: img, val: v})
	return v
}

func (c imageCache[V]) len() int { return c.lru.Len() }
func (c imageCache[V]) clear()   { c.lru.Clear() }
