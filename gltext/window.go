package gltext

// Window is the subset of the GLFW window surface render loops need. An
// interface so that non-CGo builds of callers still compile.
type Window interface {
	ShouldClose() bool
	SwapBuffers()
	GetFramebufferSize() (width, height int)
}
