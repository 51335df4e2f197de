package balancer

// crc8 computes an 8-bit checksum with polynomial 0x81, zero initial value
// and no reflection, processed MSB-first. The GELF chunk message ID is
// hashed with it so that all chunks of one message pick the same upstream.
func crc8(data []byte) uint8 {
	var crc uint8

	for _, b := range data {
		crc ^= b

		for bit := 0; bit < 8; bit++ {
			crc <<= 1

			if crc&0x80 != 0 {
				crc ^= 0x81
			}
		}
	}

	return crc
}
