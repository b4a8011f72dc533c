package index

import (
	"encoding/binary"
)

// dateWidth is len("YYYY-MM-DD"); every stored post has such a date.
const dateWidth = 10

// key = invDate(10) + pos(4) + 0x00 + id
//
// Inverting the date bytes makes a forward cursor walk newest first; pos
// keeps the collection order among posts of the same day.
func makeDateKey(date string, pos int, id string) []byte {
	buf := make([]byte, 0, dateWidth+4+1+len(id))
	for i := 0; i < dateWidth; i++ {
		var c byte
		if i < len(date) {
			c = date[i]
		}
		buf = append(buf, ^c)
	}
	var tmp [4]byte
	binary.BigEndian.PutUint32(tmp[:], uint32(pos))
	buf = append(buf, tmp[:]...)
	buf = append(buf, 0x00)
	buf = append(buf, id...)
	return buf
}

func idFromDateKey(k []byte) string {
	const head = dateWidth + 4
	if len(k) < head+2 || k[head] != 0x00 {
		return ""
	}
	return string(k[head+1:])
}
