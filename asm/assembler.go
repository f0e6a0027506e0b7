// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package asm

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"log"
	"maps"
	"regexp"
	"slices"
	"strings"

	"go.starlark.net/starlark"
	"go.starlark.net/syntax"

	"github.com/ezrec/vurec/memory"
	"github.com/ezrec/vurec/vu"
)

// Macro is a macro definition.
type Macro struct {
	LineNo int      // Line number of the first body line.
	Args   []string // Argument names, substituted as equates.
	Lines  []string // Body text.
}

// systemEquates are defined before every parse.
func systemEquates() (equ map[string]string) {
	equ = maps.Collect(memory.Defines())
	equ["LINENO"] = "0"
	return
}

// Assembler is a single pass macro assembler for vector unit microcode.
type Assembler struct {
	Verbose bool   // If set, verbosely logs the assembler actions.
	Lines   []Line // Assembled pairs.

	Label  map[string]uint32 // Map of labels to micro memory byte addresses.
	Equate map[string]string // Map of equates.
	Macro  map[string]*Macro // Map of macros.

	predefine map[string]string
	expansion int
}

// Predefine defines an equate for every following Parse.
func (asm *Assembler) Predefine(equ string, value string) {
	if asm.predefine == nil {
		asm.predefine = map[string]string{}
	}
	asm.predefine[equ] = value
}

// parenEval does compile-time $(...) evaluations
func (asm *Assembler) parenEval(expr string) (value int64, err error) {
	thread := starlark.Thread{Name: "asm"}
	opts := syntax.FileOptions{}
	pred := starlark.StringDict{}
	for key := range asm.Equate {
		v64, err := asm.valueOf(key)
		if err != nil {
			// Register names and labels are not integers.
			continue
		}
		pred[key] = starlark.MakeInt64(v64)
	}

	dict, err := starlark.ExecFileOptions(&opts, &thread, "expr", "rc="+expr+"\n", pred)
	if err != nil {
		return
	}
	rc, ok := dict["rc"].(starlark.Int)
	if !ok {
		err = ErrParseExpression(expr)
		return
	}
	value, ok = rc.Int64()
	if !ok {
		err = ErrParseExpression(expr)
	}
	return
}

var reParen = regexp.MustCompile(`\$\([^\$]*\)`)

// split breaks a line into words. Commas separate operands, and the slot
// separator and pair flags are words of their own.
func split(line string) []string {
	line = strings.NewReplacer("|", " | ", "[", " [", ",", " ").Replace(line)
	return strings.Fields(line)
}

// currentPC returns the byte address of the next pair.
func (asm *Assembler) currentPC() uint32 {
	return uint32(len(asm.Lines) * memory.PAIR_SIZE)
}

// parseLine expands a line into words, handling everything but the
// instruction pair itself.
func (asm *Assembler) parseLine(line string, lineno int) (words []string, err error) {
	asm.Equate["LINENO"] = fmt.Sprintf("%d", lineno)

	line = reParen.ReplaceAllStringFunc(line, func(str string) string {
		value, perr := asm.parenEval(str[2 : len(str)-1])
		if perr != nil {
			err = perr
		}
		return fmt.Sprintf("%d", value)
	})
	if err != nil {
		return
	}

	words = split(line)
	if len(words) == 0 {
		return
	}

	// .equ NAME VALUE
	if words[0] == ".equ" {
		if len(words) != 3 {
			err = ErrEquateSyntax
			return
		}
		if _, ok := asm.Equate[words[1]]; ok {
			err = ErrEquateDuplicate
			return
		}
		asm.Equate[words[1]] = words[2]
		words = nil
		return
	}

	for n, word := range words {
		if equate, ok := asm.Equate[word]; ok {
			words[n] = equate
		}
	}

	for len(words) > 0 && strings.HasSuffix(words[0], ":") {
		label := strings.TrimSuffix(words[0], ":")
		if _, ok := asm.Label[label]; ok {
			err = ErrLabelDuplicate
			return
		}
		asm.Label[label] = asm.currentPC()
		words = words[1:]
	}
	if len(words) == 0 {
		return
	}

	macro, ok := asm.Macro[words[0]]
	if !ok {
		return
	}

	name := words[0]
	args := words[1:]
	if len(args) != len(macro.Args) {
		err = ErrMacroSyntax
		return
	}

	saved := maps.Clone(asm.Equate)
	defer func() { asm.Equate = saved }()
	for n, arg := range macro.Args {
		asm.Equate[arg] = args[n]
	}

	asm.expansion++
	local := fmt.Sprintf("%v_%v_", name, asm.expansion)
	for n, body := range macro.Lines {
		lineno := macro.LineNo + n
		body = strings.ReplaceAll(body, "@", local)

		var expanded []string
		expanded, err = asm.parseLine(body, lineno)
		if err == nil {
			err = asm.parseWords(expanded, lineno)
		}
		if err != nil {
			err = &ErrMacro{Macro: name, Line: lineno, Err: err}
			return
		}
	}

	words = nil
	return
}

// parseWords assembles the words of one pair.
func (asm *Assembler) parseWords(words []string, lineno int) (err error) {
	if len(words) == 0 {
		return
	}

	line := Line{LineNo: lineno, PC: asm.currentPC(), Words: slices.Clone(words)}

	upperWords := words
	var lowerWords []string
	if bar := slices.Index(words, "|"); bar >= 0 {
		upperWords, lowerWords = words[:bar], words[bar+1:]
		if slices.Contains(lowerWords, "|") {
			return ErrSlotExtra
		}
	}

	var flags vu.Word
	upperWords = slices.DeleteFunc(slices.Clone(upperWords), func(word string) bool {
		if !strings.HasPrefix(word, "[") {
			return false
		}
		for _, c := range strings.Trim(word, "[]") {
			switch c {
			case 'e':
				flags |= vu.BIT_E
			case 'i':
				flags |= vu.BIT_I
			default:
				err = ErrFlagInvalid
			}
		}
		return true
	})
	if err != nil {
		return
	}

	upper, err := asm.parseSlot(upperWords, true)
	if err != nil {
		return
	}
	line.Upper, err = upper.encode()
	if err != nil {
		return
	}
	line.Upper |= flags

	switch {
	case len(lowerWords) == 0 && flags&vu.BIT_I != 0:
		return ErrSlotMissing
	case len(lowerWords) == 0:
		lowerWords = []string{"nop"}
	case lowerWords[0] == "loi":
		line.Upper |= vu.BIT_I
		lowerWords = lowerWords[1:]
	}

	switch {
	case line.Upper&vu.BIT_I != 0:
		if len(lowerWords) != 1 {
			return ErrOperandCount
		}
		var imm uint32
		imm, err = asm.immediateOf(lowerWords[0])
		line.Lower = vu.Word(imm)
	case len(lowerWords) == 1 && lowerWords[0] == "nop":
		line.Lower = vu.Word(vu.OP_MOVE.Info().Base)
	default:
		line.lower, err = asm.parseSlot(lowerWords, false)
		if err == nil {
			line.Lower, err = line.lower.encode()
		}
	}
	if err != nil {
		return
	}

	if asm.Verbose {
		log.Printf("asm: 0x%04x: %08x %08x %v", line.PC, uint32(line.Upper), uint32(line.Lower), strings.Join(words, " "))
	}

	asm.Lines = append(asm.Lines, line)
	return
}

// link resolves the branch labels of every assembled pair.
func (asm *Assembler) link() (err error) {
	for n := range asm.Lines {
		line := &asm.Lines[n]
		s := &line.lower
		if s.label == "" {
			continue
		}

		target, ok := asm.Label[s.label]
		if !ok {
			return &ErrSyntax{LineNo: line.LineNo, Line: strings.Join(line.Words, " "), Err: ErrLabelMissing(s.label)}
		}

		delta := int64(target) - int64(line.PC+memory.PAIR_SIZE)
		s.operands[s.target].Imm = int32(delta / memory.PAIR_SIZE)
		line.Lower, err = s.encode()
		if err != nil {
			return &ErrSyntax{LineNo: line.LineNo, Line: strings.Join(line.Words, " "), Err: err}
		}
	}
	return
}

// Parse assembles an input stream into a program.
func (asm *Assembler) Parse(input io.Reader) (prog *Program, err error) {
	scanner := bufio.NewScanner(input)

	var line string
	var lineno int
	var macro *Macro

	defer func() {
		var syntaxErr *ErrSyntax
		if err != nil && !errors.As(err, &syntaxErr) {
			err = &ErrSyntax{LineNo: lineno, Line: line, Err: err}
		}
	}()

	asm.Lines = asm.Lines[:0]
	asm.expansion = 0
	asm.Label = map[string]uint32{}
	asm.Macro = map[string]*Macro{}
	asm.Equate = systemEquates()
	maps.Copy(asm.Equate, asm.predefine)

	for scanner.Scan() {
		text := scanner.Text()
		lineno++

		if asm.Verbose {
			log.Printf("asm: %v: %v", lineno, text)
		}

		line, _, _ = strings.Cut(text, ";")
		line = strings.TrimSpace(line)
		words := strings.Fields(line)

		// .macro NAME arg...
		if len(words) > 0 && words[0] == ".macro" {
			if macro != nil {
				return nil, ErrMacroNesting
			}
			if len(words) < 2 {
				return nil, ErrMacroSyntax
			}
			if _, ok := asm.Macro[words[1]]; ok {
				return nil, ErrMacroDuplicate
			}
			macro = &Macro{LineNo: lineno + 1, Args: words[2:]}
			asm.Macro[words[1]] = macro
			continue
		}

		if len(words) > 0 && words[0] == ".endm" {
			if macro == nil {
				return nil, ErrMacroLonelyEndm
			}
			macro = nil
			continue
		}

		if macro != nil {
			macro.Lines = append(macro.Lines, line)
			continue
		}

		words, err = asm.parseLine(line, lineno)
		if err != nil {
			return
		}

		err = asm.parseWords(words, lineno)
		if err != nil {
			return
		}
	}
	if err = scanner.Err(); err != nil {
		return
	}

	if macro != nil {
		return nil, ErrMacroLonely
	}

	err = asm.link()
	if err != nil {
		return
	}

	prog = &Program{
		Lines: slices.Clone(asm.Lines),
		Label: maps.Clone(asm.Label),
	}
	return
}
