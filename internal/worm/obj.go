package worm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
)

// ErrReleased is returned when exporting a mesh that has been released.
var ErrReleased = errors.New("worm: mesh released")

// WriteOBJ writes the mesh as a Wavefront OBJ object named name.
func (m *Mesh) WriteOBJ(w io.Writer, name string) error {
	if m == nil || m.released {
		return ErrReleased
	}

	bw := bufio.NewWriter(w)
	fmt.Fprintf(bw, "o %s\n", name)
	for _, p := range m.Positions {
		fmt.Fprintf(bw, "v %.6f %.6f %.6f\n", p.X, p.Y, p.Z)
	}
	for _, n := range m.Normals {
		fmt.Fprintf(bw, "vn %.6f %.6f %.6f\n", n.X, n.Y, n.Z)
	}
	// OBJ indices are 1-based.
	for k := 0; k+2 < len(m.Indices); k += 3 {
		a, b, c := m.Indices[k]+1, m.Indices[k+1]+1, m.Indices[k+2]+1
		fmt.Fprintf(bw, "f %d//%d %d//%d %d//%d\n", a, a, b, b, c, c)
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("worm: write obj: %w", err)
	}
	return nil
}
