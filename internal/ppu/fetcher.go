package ppu

// VRAMReader gives the renderer raw access to video RAM (0x8000-0x9FFF).
type VRAMReader interface {
	VRAM(addr uint16) byte
}

// fifo is a ring buffer of 2-bit colour indices.
type fifo struct {
	buf  [32]byte
	head int
	tail int
	size int
}

func (q *fifo) Clear()   { q.head, q.tail, q.size = 0, 0, 0 }
func (q *fifo) Len() int { return q.size }

func (q *fifo) Push(ci byte) bool {
	if q.size == len(q.buf) {
		return false
	}
	q.buf[q.tail] = ci & 0x03
	q.tail = (q.tail + 1) % len(q.buf)
	q.size++
	return true
}

func (q *fifo) Pop() (byte, bool) {
	if q.size == 0 {
		return 0, false
	}
	v := q.buf[q.head]
	q.head = (q.head + 1) % len(q.buf)
	q.size--
	return v, true
}

// tileFetcher walks one row of a tile map, pushing 8 pixels per fetch.
type tileFetcher struct {
	mem          VRAMReader
	fifo         *fifo
	mapRow       uint16 // address of column 0 in the current map row
	col          uint16 // 0..31
	tileData8000 bool
	fineY        byte
}

// start positions the fetcher at map (col, row) with fineY rows into the tile.
func (f *tileFetcher) start(mapBase uint16, col, row uint16, fineY byte, tileData8000 bool) {
	f.mapRow = mapBase + (row&31)*32
	f.col = col & 31
	f.fineY = fineY & 7
	f.tileData8000 = tileData8000
	f.fifo.Clear()
}

// fetch decodes the current tile row and moves to the next column, wrapping at 32.
func (f *tileFetcher) fetch() {
	lo, hi := tileRow(f.mem, f.mem.VRAM(f.mapRow+f.col), f.fineY, f.tileData8000)
	for px := 7; px >= 0; px-- {
		f.fifo.Push(pixel(lo, hi, px))
	}
	f.col = (f.col + 1) & 31
}

// next pops one pixel, fetching when the queue runs dry.
func (f *tileFetcher) next() byte {
	if f.fifo.Len() == 0 {
		f.fetch()
	}
	ci, _ := f.fifo.Pop()
	return ci
}

// tileRow returns the two bit-planes of one tile row. In 0x8800 mode the
// index is signed around 0x9000, so indices >= 128 land in 0x8800-0x8FFF.
func tileRow(mem VRAMReader, index, fineY byte, tileData8000 bool) (lo, hi byte) {
	var addr uint16
	if tileData8000 {
		addr = 0x8000 + uint16(index)*16
	} else {
		addr = uint16(0x9000 + int(int8(index))*16)
	}
	addr += uint16(fineY) * 2
	return mem.VRAM(addr), mem.VRAM(addr + 1)
}

// pixel extracts the colour index at bit position bit (7 is leftmost).
func pixel(lo, hi byte, bit int) byte {
	return (hi>>bit&1)<<1 | lo>>bit&1
}
