package main

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"

	"github.com/edadma/slate-sub000/pkg/bytecode"
	"github.com/edadma/slate-sub000/pkg/compiler"
	"github.com/edadma/slate-sub000/pkg/lexer"
	"github.com/edadma/slate-sub000/pkg/parser"
	"github.com/edadma/slate-sub000/pkg/value"
	"github.com/edadma/slate-sub000/pkg/vm"
)

const version = "0.1.0"

func main() {
	debug := false
	args := os.Args[1:]
	for len(args) > 0 && args[0] == "-debug" {
		debug = true
		args = args[1:]
	}

	if len(args) == 0 {
		runREPL(debug)
		return
	}

	switch args[0] {
	case "version", "-v", "--version":
		fmt.Printf("slate version %s\n", version)
	case "help", "-h", "--help":
		printUsage()
	case "repl":
		runREPL(debug)
	case "run":
		if len(args) < 2 {
			fmt.Println("Error: no file specified")
			printUsage()
			os.Exit(1)
		}
		runFile(args[1], debug)
	case "compile":
		if len(args) < 2 {
			fmt.Println("Error: no file specified")
			fmt.Println("\nUsage: slate compile <input.sl> [output.sgb]")
			os.Exit(1)
		}
		out := ""
		if len(args) >= 3 {
			out = args[2]
		}
		compileFile(args[1], out)
	case "disassemble", "disasm":
		if len(args) < 2 {
			fmt.Println("Error: no file specified")
			fmt.Println("\nUsage: slate disassemble <file.sgb>")
			os.Exit(1)
		}
		disassembleFile(args[1])
	default:
		runFile(args[0], debug)
	}
}

func printUsage() {
	fmt.Println("slate - a small dynamically typed scripting language")
	fmt.Println("\nUsage:")
	fmt.Println("  slate                        Start interactive REPL")
	fmt.Println("  slate [file]                 Run a .sl or .sgb file")
	fmt.Println("  slate run [file]              Run a .sl or .sgb file")
	fmt.Println("  slate compile <in> [out]      Compile .sl to .sgb bytecode")
	fmt.Println("  slate disassemble <file>      Disassemble .sgb bytecode file")
	fmt.Println("  slate repl                    Start interactive REPL")
	fmt.Println("  slate version                 Show version")
	fmt.Println("  slate help                    Show this help")
	fmt.Println("  -debug                        Enable the stepping debugger (run, repl, file)")
	fmt.Println("\nFile extensions:")
	fmt.Println("  .sl     Source code files (text)")
	fmt.Println("  .sgb    Compiled bytecode files (binary)")
}

// runFile runs a .sl source file or a .sgb compiled chunk, detected by
// extension: .sgb files skip straight to execution.
func runFile(filename string, debug bool) {
	if filepath.Ext(filename) == ".sgb" {
		runBytecodeFile(filename, debug)
		return
	}
	runSourceFile(filename, debug)
}

func parseAndCompile(src string) (*bytecode.FunctionProto, error) {
	p := parser.New(lexer.New(src))
	program := p.ParseProgram()
	if errs := p.Errors(); len(errs) > 0 {
		return nil, fmt.Errorf("parse error: %s", strings.Join(errs, "; "))
	}
	proto, errs := compiler.Compile(program)
	if len(errs) > 0 {
		return nil, fmt.Errorf("compile error: %s", strings.Join(errs, "; "))
	}
	return proto, nil
}

func runSourceFile(filename string, debug bool) {
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	proto, err := parseAndCompile(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		os.Exit(1)
	}
	execute(proto, debug)
}

func runBytecodeFile(filename string, debug bool) {
	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	chunk, err := bytecode.Decode(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bytecode: %v\n", err)
		os.Exit(1)
	}
	proto := &bytecode.FunctionProto{Chunk: chunk}
	execute(proto, debug)
}

func execute(proto *bytecode.FunctionProto, debug bool) {
	machine := vm.New()
	if debug {
		machine.EnableDebugger().Enable()
	}
	_, err := machine.Execute(proto)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Runtime error: %v", err))
		os.Exit(1)
	}
}

func compileFile(inputFile, outputFile string) {
	if outputFile == "" {
		if filepath.Ext(inputFile) == ".sl" {
			outputFile = inputFile[:len(inputFile)-len(".sl")] + ".sgb"
		} else {
			outputFile = inputFile + ".sgb"
		}
	}

	data, err := os.ReadFile(inputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	proto, err := parseAndCompile(string(data))
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		os.Exit(1)
	}

	outFile, err := os.Create(outputFile)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error creating output file: %v\n", err)
		os.Exit(1)
	}
	defer outFile.Close()

	if err := bytecode.Encode(proto.Chunk, outFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error writing bytecode: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Compiled %s -> %s\n", inputFile, outputFile)
}

func disassembleFile(filename string) {
	file, err := os.Open(filename)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading file: %v\n", err)
		os.Exit(1)
	}
	defer file.Close()

	chunk, err := bytecode.Decode(file)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading bytecode: %v\n", err)
		os.Exit(1)
	}
	fmt.Println(color.CyanString("=== Bytecode Disassembly: %s ===\n", filename))
	fmt.Println(bytecode.Disassemble(chunk, filename))
}

// runREPL runs a persistent VM across successive single-line programs: a
// top-level `let` compiles to a global (see compiler.defineVariable), so
// bindings and class declarations from one line stay visible to the next
// without any incremental-compiler bookkeeping.
func runREPL(debug bool) {
	fmt.Printf("slate REPL v%s\n", version)
	fmt.Println("Type :help for help, :quit or :exit to leave")
	fmt.Println()

	machine := vm.New()
	if debug {
		machine.EnableDebugger().Enable()
	}
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("slate> ")
		if !scanner.Scan() {
			break
		}
		line := strings.TrimSpace(scanner.Text())
		switch line {
		case "":
			continue
		case ":quit", ":exit":
			fmt.Println("Goodbye!")
			return
		case ":help":
			printREPLHelp()
			continue
		}
		evalREPL(machine, line)
	}
	if err := scanner.Err(); err != nil {
		fmt.Fprintf(os.Stderr, "Error reading input: %v\n", err)
	}
}

func evalREPL(machine *vm.VM, input string) {
	proto, err := parseAndCompile(input)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString(err.Error()))
		return
	}
	result, err := machine.Execute(proto)
	if err != nil {
		fmt.Fprintln(os.Stderr, color.RedString("Runtime error: %v", err))
		return
	}
	if !result.IsNull() {
		fmt.Println("=> " + value.Display(result))
	}
	result.Release()
}

func printREPLHelp() {
	fmt.Println("slate REPL help")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  :help     Show this help message")
	fmt.Println("  :quit     Exit the REPL")
	fmt.Println("  :exit     Exit the REPL")
	fmt.Println()
	fmt.Println("Each line is compiled and run against a shared VM, so")
	fmt.Println("top-level `let` bindings and `class` declarations persist")
	fmt.Println("across lines.")
	fmt.Println()
	fmt.Println("Example:")
	fmt.Println("  slate> let x = 42")
	fmt.Println("  slate> x + 8")
	fmt.Println("  => 50")
	fmt.Println()
}
