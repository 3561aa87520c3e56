package common

// Key codes delivered by window key callbacks. They match GLFW's values:
// printable keys use their ASCII code, the rest use GLFW's extended range.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32
	KeyA     = 65
	KeyB     = 66
	KeyD     = 68
	KeyE     = 69
	KeyF     = 70
	KeyH     = 72
	KeyO     = 79
	KeyQ     = 81
	KeyS     = 83
	KeyW     = 87

	KeyEsc       = 256
	KeyRight     = 262
	KeyLeft      = 263
	KeyDown      = 264
	KeyUp        = 265
	KeyLeftShift = 340
)
