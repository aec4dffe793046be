package server

import "sync"

const proxyBufferSize = 32 * 1024

// proxyBufferPool shares copy buffers between upstream proxies so page bodies
// are streamed without a fresh allocation per response.
type proxyBufferPool struct {
	size int
	pool sync.Pool
}

func newProxyBufferPool(size int) *proxyBufferPool {
	p := &proxyBufferPool{size: size}
	p.pool.New = func() any {
		buf := make([]byte, p.size)
		return &buf
	}
	return p
}

func (p *proxyBufferPool) Get() []byte {
	return *(p.pool.Get().(*[]byte))
}

func (p *proxyBufferPool) Put(buf []byte) {
	if cap(buf) < p.size {
		return
	}
	buf = buf[:p.size]
	p.pool.Put(&buf)
}

var sharedProxyBufferPool = newProxyBufferPool(proxyBufferSize)
