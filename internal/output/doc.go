// Package output produces the side effects of the layer remapper: typing
// substitute keystrokes and launching binding commands.
//
// Dispatcher implements input.Sink. Text in send notation is parsed into
// strokes and typed on a Keyboard; RunCommand actions are started through a
// Launcher. Failures never reach the caller and are reported to an error
// handler instead.
//
// On Linux, VirtualKeyboard is a uinput device that both types strokes and
// re-emits the events forwarded from the grabbed physical keyboard.
package output
