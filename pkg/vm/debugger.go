// Package vm - debugger support
package vm

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/fatih/color"

	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/value"
)

// Debugger provides interactive breakpoint/step debugging over the VM's
// frame-based execution loop (spec.md does not mandate a debugger, but
// the teacher carries one as ambient tooling; this keeps its command
// shape while adapting it to Chunk-based bytecode and call frames).
type Debugger struct {
	vm          *VM
	breakpoints map[int]bool
	stepMode    bool
	enabled     bool
}

// NewDebugger creates a new debugger instance attached to vm.
func NewDebugger(vm *VM) *Debugger {
	return &Debugger{vm: vm, breakpoints: make(map[int]bool)}
}

func (d *Debugger) Enable()                 { d.enabled = true }
func (d *Debugger) Disable()                { d.enabled = false }
func (d *Debugger) SetStepMode(enabled bool) { d.stepMode = enabled }
func (d *Debugger) AddBreakpoint(ip int)     { d.breakpoints[ip] = true }
func (d *Debugger) RemoveBreakpoint(ip int)  { delete(d.breakpoints, ip) }
func (d *Debugger) ClearBreakpoints()        { d.breakpoints = make(map[int]bool) }

// ShouldPause reports whether execution should pause before the current
// frame's next instruction.
func (d *Debugger) ShouldPause() bool {
	if !d.enabled {
		return false
	}
	if d.stepMode {
		return true
	}
	f := d.vm.currentFrame()
	return d.breakpoints[f.ip]
}

func (d *Debugger) showCurrentInstruction(chunk *bytecode.Chunk) {
	f := d.vm.currentFrame()
	fmt.Println(color.CyanString("  at ip=%d line=%d in %s", f.ip, lineAt(chunk, f.ip), f.closure.proto.Name))
}

func (d *Debugger) showStack() {
	fmt.Println("Stack (top to bottom):")
	if d.vm.sp == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i := d.vm.sp - 1; i >= 0; i-- {
		fmt.Printf("  [%d] %s\n", i, value.Display(d.vm.stack[i]))
	}
}

func (d *Debugger) showLocals() {
	f := d.vm.currentFrame()
	fmt.Println("Local variables:")
	if d.vm.sp <= f.base {
		fmt.Println("  (none set)")
		return
	}
	for i := f.base; i < d.vm.sp; i++ {
		fmt.Printf("  [%d] %s\n", i-f.base, value.Display(d.vm.stack[i]))
	}
}

func (d *Debugger) showGlobals() {
	fmt.Println("Global variables:")
	if len(d.vm.globals) == 0 {
		fmt.Println("  (none)")
		return
	}
	for name, val := range d.vm.globals {
		fmt.Printf("  %s = %s\n", name, value.Display(val))
	}
}

func (d *Debugger) showCallStack() {
	fmt.Println("Call stack (innermost first):")
	if len(d.vm.frames) == 0 {
		fmt.Println("  (empty)")
		return
	}
	for i := len(d.vm.frames) - 1; i >= 0; i-- {
		fr := d.vm.frames[i]
		name := fr.closure.proto.Name
		if name == "" {
			name = "<anonymous>"
		}
		fmt.Printf("  %s [ip=%d, base=%d]\n", name, fr.ip, fr.base)
	}
}

// InteractivePrompt is called when execution pauses; it returns false if
// the user asked to quit, which aborts the run loop.
func (d *Debugger) InteractivePrompt(chunk *bytecode.Chunk) bool {
	scanner := bufio.NewScanner(os.Stdin)
	fmt.Println(color.YellowString("\n=== Debugger Paused ==="))
	d.showCurrentInstruction(chunk)

	for {
		fmt.Print("debug> ")
		if !scanner.Scan() {
			return false
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		parts := strings.Fields(line)
		switch parts[0] {
		case "help", "h", "?":
			d.printHelp()
		case "continue", "c":
			d.SetStepMode(false)
			return true
		case "step", "s":
			d.SetStepMode(true)
			return true
		case "stack", "st":
			d.showStack()
		case "locals", "l":
			d.showLocals()
		case "globals", "g":
			d.showGlobals()
		case "callstack", "cs":
			d.showCallStack()
		case "instruction", "i":
			d.showCurrentInstruction(chunk)
		case "breakpoint", "b":
			if len(parts) < 2 {
				fmt.Println("Usage: breakpoint <ip>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Invalid instruction offset")
				continue
			}
			d.AddBreakpoint(ip)
			fmt.Printf("Breakpoint added at ip %d\n", ip)
		case "delete", "d":
			if len(parts) < 2 {
				fmt.Println("Usage: delete <ip>")
				continue
			}
			ip, err := strconv.Atoi(parts[1])
			if err != nil {
				fmt.Println("Invalid instruction offset")
				continue
			}
			d.RemoveBreakpoint(ip)
			fmt.Printf("Breakpoint removed at ip %d\n", ip)
		case "list", "ls":
			fmt.Println(bytecode.Disassemble(chunk, d.vm.currentFrame().closure.proto.Name))
		case "quit", "q":
			return false
		default:
			fmt.Printf("Unknown command: %s (type 'help' for commands)\n", parts[0])
		}
	}
}

func (d *Debugger) printHelp() {
	fmt.Println("Debugger commands:")
	fmt.Println("  help, h, ?           Show this help")
	fmt.Println("  continue, c          Continue execution")
	fmt.Println("  step, s              Pause before every instruction")
	fmt.Println("  stack, st            Show the operand stack")
	fmt.Println("  locals, l            Show the current frame's locals")
	fmt.Println("  globals, g           Show global variables")
	fmt.Println("  callstack, cs        Show the call stack")
	fmt.Println("  instruction, i       Show the current instruction")
	fmt.Println("  breakpoint <ip>, b   Add a breakpoint at a bytecode offset")
	fmt.Println("  delete <ip>, d       Remove a breakpoint")
	fmt.Println("  list, ls             Disassemble the current function")
	fmt.Println("  quit, q              Abort execution")
}
