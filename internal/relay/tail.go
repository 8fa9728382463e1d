package relay

import "io"

const tailBlockSize = 4096

// Tail returns the offset where the last n lines of rs begin. A final
// newline terminates the last line rather than starting an empty one.
// n <= 0 yields the end of the stream.
func Tail(rs io.ReadSeeker, n int) (int64, error) {
	size, err := rs.Seek(0, io.SeekEnd)
	if err != nil {
		return 0, err
	}
	if n <= 0 || size == 0 {
		return size, nil
	}

	buf := make([]byte, tailBlockSize)
	end := size
	if _, err := rs.Seek(size-1, io.SeekStart); err != nil {
		return 0, err
	}
	if _, err := io.ReadFull(rs, buf[:1]); err != nil {
		return 0, err
	}
	if buf[0] == '\n' {
		end = size - 1
	}

	count := 0
	for end > 0 {
		start := end - tailBlockSize
		if start < 0 {
			start = 0
		}
		chunk := buf[:end-start]
		if _, err := rs.Seek(start, io.SeekStart); err != nil {
			return 0, err
		}
		if _, err := io.ReadFull(rs, chunk); err != nil {
			return 0, err
		}
		for i := len(chunk) - 1; i >= 0; i-- {
			if chunk[i] != '\n' {
				continue
			}
			count++
			if count == n {
				return start + int64(i) + 1, nil
			}
		}
		end = start
	}
	return 0, nil
}
