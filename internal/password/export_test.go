package password

import "io"

func (h *Argon2idHasher) SetRand(r io.Reader) {
	h.rand = r
}
