package main

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"

	"github.com/alexhholmes/sgtree"
)

type (
	tree       = sgtree.Tree[int64, string]
	dispatcher = sgtree.Dispatcher[int64, string]
	request    = sgtree.Request[int64, string]
	entry      = sgtree.Entry[int64, string]
)

const usageText = `commands (case-insensitive, one per line):
  insert K [V]            delete K            search K
  inorder | preorder | postorder | levels
  balance                 clear               empty
  batch_insert K[=V]...   batch_delete K...
  undo                    redo
  suminrange LO HI        valuesinrange LO HI
  min | max               kth I               succ K
  split K                 compare NAME        merge NAME
  use NAME                trees               stats | digest
  exit
Opcode names such as DISPLAY_INORDER or DELETEOP are accepted too.
`

// Session holds named trees, each behind its own dispatcher, and routes
// parsed command lines to the active one.
type Session struct {
	out    io.Writer
	opts   []sgtree.Option
	trees  map[string]*dispatcher
	active string
}

// NewSession creates a session with one empty tree named "A".
func NewSession(out io.Writer, opts ...sgtree.Option) (*Session, error) {
	s := &Session{
		out:   out,
		opts:  opts,
		trees: make(map[string]*dispatcher),
	}
	if _, err := s.use("A"); err != nil {
		return nil, err
	}
	return s, nil
}

// Run executes lines from r until EOF or EXIT. Command errors are printed
// and do not stop the loop.
func (s *Session) Run(r io.Reader, prompt bool) error {
	scanner := bufio.NewScanner(r)
	for {
		if prompt {
			fmt.Fprintf(s.out, "%s> ", s.active)
		}
		if !scanner.Scan() {
			return scanner.Err()
		}
		done, err := s.Exec(scanner.Text())
		if err != nil {
			fmt.Fprintf(s.out, "error: %v\n", err)
		}
		if done {
			return nil
		}
	}
}

// Exec runs one command line. It reports true once EXIT was dispatched.
func (s *Session) Exec(line string) (bool, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return false, nil
	}
	name, args := strings.ToLower(fields[0]), fields[1:]

	// Session commands that are not tree opcodes
	switch name {
	case "use":
		if len(args) != 1 {
			return false, errors.New("use NAME")
		}
		_, err := s.use(args[0])
		return false, err
	case "trees":
		s.printTrees()
		return false, nil
	case "stats":
		fmt.Fprintln(s.out, s.current().Tree().Stats())
		return false, nil
	case "digest":
		fmt.Fprintf(s.out, "%016x\n", s.current().Tree().Digest())
		return false, nil
	case "help":
		fmt.Fprint(s.out, usageText)
		return false, nil
	}

	req, err := s.parse(name, args)
	if err != nil {
		return false, err
	}

	d := s.current()
	res, err := d.Dispatch(req)
	if err != nil {
		return false, err
	}
	s.print(res)
	return d.Exited(), nil
}

func (s *Session) current() *dispatcher {
	return s.trees[s.active]
}

// use switches to the named tree, creating it if needed.
func (s *Session) use(name string) (*dispatcher, error) {
	if d, ok := s.trees[name]; ok {
		s.active = name
		return d, nil
	}
	t, err := sgtree.New[int64, string](s.opts...)
	if err != nil {
		return nil, err
	}
	d := sgtree.NewDispatcher(t)
	s.trees[name] = d
	s.active = name
	return d, nil
}

func (s *Session) lookup(name string) (*tree, error) {
	d, ok := s.trees[name]
	if !ok {
		return nil, fmt.Errorf("no tree named %q", name)
	}
	return d.Tree(), nil
}

func (s *Session) printTrees() {
	names := make([]string, 0, len(s.trees))
	for name := range s.trees {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		marker := " "
		if name == s.active {
			marker = "*"
		}
		fmt.Fprintf(s.out, "%s %s (%d keys)\n", marker, name, s.trees[name].Tree().Len())
	}
}

func (s *Session) parse(name string, args []string) (request, error) {
	switch name {
	case "inorder", "display":
		name = "display_inorder"
	case "preorder":
		name = "display_preorder"
	case "postorder":
		name = "display_postorder"
	case "levels":
		name = "display_levels"
	}
	op, err := sgtree.ParseOpcode(name)
	if err != nil {
		return nil, err
	}

	switch op {
	case sgtree.OpInsert:
		if len(args) < 1 {
			return nil, errors.New("insert K [V]")
		}
		k, err := parseKey(args[0])
		if err != nil {
			return nil, err
		}
		v := strings.Join(args[1:], " ")
		if v == "" {
			v = args[0]
		}
		return sgtree.InsertRequest[int64, string]{Key: k, Value: v}, nil
	case sgtree.OpDelete:
		k, err := oneKey(args)
		return sgtree.DeleteRequest[int64, string]{Key: k}, err
	case sgtree.OpSearch:
		k, err := oneKey(args)
		return sgtree.SearchRequest[int64, string]{Key: k}, err
	case sgtree.OpSucc:
		k, err := oneKey(args)
		return sgtree.SuccRequest[int64, string]{Key: k}, err
	case sgtree.OpSplit:
		k, err := oneKey(args)
		return sgtree.SplitRequest[int64, string]{Key: k}, err
	case sgtree.OpDisplayInorder:
		return sgtree.DisplayRequest{Order: sgtree.InOrder}, nil
	case sgtree.OpDisplayPreorder:
		return sgtree.DisplayRequest{Order: sgtree.PreOrder}, nil
	case sgtree.OpDisplayPostorder:
		return sgtree.DisplayRequest{Order: sgtree.PostOrder}, nil
	case sgtree.OpDisplayLevels:
		return sgtree.LevelsRequest{}, nil
	case sgtree.OpBalance:
		return sgtree.BalanceRequest{}, nil
	case sgtree.OpEmpty:
		return sgtree.EmptyRequest{}, nil
	case sgtree.OpClear:
		return sgtree.ClearRequest{}, nil
	case sgtree.OpUndo:
		return sgtree.UndoRequest{}, nil
	case sgtree.OpRedo:
		return sgtree.RedoRequest{}, nil
	case sgtree.OpMin:
		return sgtree.MinRequest{}, nil
	case sgtree.OpMax:
		return sgtree.MaxRequest{}, nil
	case sgtree.OpExit:
		return sgtree.ExitRequest{}, nil
	case sgtree.OpKth:
		if len(args) != 1 {
			return nil, errors.New("kth I")
		}
		i, err := strconv.Atoi(args[0])
		if err != nil {
			return nil, fmt.Errorf("bad index %q", args[0])
		}
		return sgtree.KthRequest{Index: i}, nil
	case sgtree.OpCompare, sgtree.OpMerge:
		if len(args) != 1 {
			return nil, fmt.Errorf("%s NAME", strings.ToLower(op.String()))
		}
		other, err := s.lookup(args[0])
		if err != nil {
			return nil, err
		}
		if op == sgtree.OpCompare {
			return sgtree.CompareRequest[int64, string]{Other: other}, nil
		}
		return sgtree.MergeRequest[int64, string]{Other: other}, nil
	case sgtree.OpBatchInsert:
		entries := make([]entry, 0, len(args))
		for _, arg := range args {
			k, v, _ := strings.Cut(arg, "=")
			key, err := parseKey(k)
			if err != nil {
				return nil, err
			}
			if v == "" {
				v = k
			}
			entries = append(entries, entry{Key: key, Value: v})
		}
		return sgtree.BatchInsertRequest[int64, string]{Entries: entries}, nil
	case sgtree.OpBatchDelete:
		keys := make([]int64, 0, len(args))
		for _, arg := range args {
			key, err := parseKey(arg)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		}
		return sgtree.BatchDeleteRequest[int64, string]{Keys: keys}, nil
	case sgtree.OpSumInRange, sgtree.OpValuesInRange:
		if len(args) != 2 {
			return nil, fmt.Errorf("%s LO HI", strings.ToLower(op.String()))
		}
		lo, err := parseKey(args[0])
		if err != nil {
			return nil, err
		}
		hi, err := parseKey(args[1])
		if err != nil {
			return nil, err
		}
		if op == sgtree.OpSumInRange {
			return sgtree.SumInRangeRequest[int64, string]{Lo: lo, Hi: hi}, nil
		}
		return sgtree.ValuesInRangeRequest[int64, string]{Lo: lo, Hi: hi}, nil
	}
	return nil, fmt.Errorf("%w: %v", sgtree.ErrUnknownOpcode, op)
}

func (s *Session) print(res sgtree.Result[int64, string]) {
	switch res.Op {
	case sgtree.OpInsert, sgtree.OpDelete, sgtree.OpUndo, sgtree.OpRedo:
		fmt.Fprintln(s.out, res.Status)
	case sgtree.OpSearch:
		if res.Status == sgtree.StatusFound {
			fmt.Fprintf(s.out, "Found %q\n", res.Value)
		} else {
			fmt.Fprintln(s.out, res.Status)
		}
	case sgtree.OpSucc:
		if res.Status == sgtree.StatusFound {
			fmt.Fprintln(s.out, res.Key)
		} else {
			fmt.Fprintln(s.out, res.Status)
		}
	case sgtree.OpDisplayInorder, sgtree.OpDisplayPreorder, sgtree.OpDisplayPostorder:
		fmt.Fprintln(s.out, formatKeys(res.Keys))
	case sgtree.OpDisplayLevels:
		for depth, level := range res.Levels {
			fmt.Fprintf(s.out, "%d: %s\n", depth, formatKeys(level))
		}
	case sgtree.OpCompare:
		fmt.Fprintln(s.out, res.Status)
	case sgtree.OpMerge:
		fmt.Fprintf(s.out, "Ok merged=%d conflicts=%s\n", res.Count, formatKeys(res.Conflicts))
	case sgtree.OpEmpty:
		fmt.Fprintln(s.out, res.Empty)
	case sgtree.OpBatchInsert, sgtree.OpBatchDelete:
		fmt.Fprintf(s.out, "Ok %d\n", res.Count)
	case sgtree.OpSumInRange:
		fmt.Fprintln(s.out, strconv.FormatFloat(res.Sum, 'f', -1, 64))
	case sgtree.OpValuesInRange:
		var parts []string
		for k, v := range res.Range {
			parts = append(parts, fmt.Sprintf("%d=%s", k, v))
		}
		fmt.Fprintf(s.out, "[%s]\n", strings.Join(parts, " "))
	case sgtree.OpMin, sgtree.OpMax, sgtree.OpKth:
		fmt.Fprintln(s.out, res.Key)
	case sgtree.OpSplit:
		s.storeHalves(res.Lower, res.Upper)
	case sgtree.OpExit:
		fmt.Fprintln(s.out, "bye")
	default:
		fmt.Fprintln(s.out, "Ok")
	}
}

// storeHalves keeps split results as new trees "<active>.lo" and
// "<active>.hi" so they can be inspected, compared or merged back.
func (s *Session) storeHalves(lower, upper *tree) {
	for suffix, half := range map[string]*tree{".lo": lower, ".hi": upper} {
		s.trees[s.active+suffix] = sgtree.NewDispatcher(half)
	}
	fmt.Fprintf(s.out, "Ok %s.lo=%s %s.hi=%s\n",
		s.active, formatKeys(lower.Keys()), s.active, formatKeys(upper.Keys()))
}

func oneKey(args []string) (int64, error) {
	if len(args) != 1 {
		return 0, errors.New("expected one key")
	}
	return parseKey(args[0])
}

func parseKey(s string) (int64, error) {
	k, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("bad key %q", s)
	}
	return k, nil
}

func formatKeys(keys []int64) string {
	parts := make([]string, len(keys))
	for i, k := range keys {
		parts[i] = strconv.FormatInt(k, 10)
	}
	return "[" + strings.Join(parts, " ") + "]"
}
