// Package client implements the interactive inventory shell.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"sync"
	"text/tabwriter"

	"go.uber.org/zap"

	"github.com/atinyakov/ShopKeeper/internal/models"
	"github.com/atinyakov/ShopKeeper/internal/service"
)

// Prompt is printed before every command.
const Prompt = "shopkeeper> "

const helpText = `Available commands:
  list phones|accessories|sales|brands|categories
  add phone|accessory|sale|category
  add brand <brand> <model>
  edit phone|accessory <id>
  delete phone|accessory|sale <id>
  delete brand <brand> <model>
  delete category <name>
  find phones|accessories <term>
  number <phone number>, serial <serial number>, sale <id>
  login <username>, logout, whoami
  stats, export <file>, import <file>
  watch phones|accessories|sales
  help, exit`

// Inventory is the part of the storage facade the shell drives.
type Inventory interface {
	RemoteEnabled() bool

	Phones(ctx context.Context) ([]models.Phone, error)
	AddPhone(ctx context.Context, p models.Phone) (string, error)
	UpdatePhone(ctx context.Context, id string, patch models.Patch) error
	DeletePhone(ctx context.Context, id string) error
	PhoneByNumber(ctx context.Context, number string) (models.Phone, error)
	PhoneBySerial(ctx context.Context, serial string) (models.Phone, error)
	SearchPhones(ctx context.Context, term string) ([]models.Phone, error)

	Accessories(ctx context.Context) ([]models.Accessory, error)
	AddAccessory(ctx context.Context, a models.Accessory) (string, error)
	UpdateAccessory(ctx context.Context, id string, patch models.Patch) error
	DeleteAccessory(ctx context.Context, id string) error
	SearchAccessories(ctx context.Context, term string) ([]models.Accessory, error)

	Sales(ctx context.Context) ([]models.Sale, error)
	AddSale(ctx context.Context, sale models.Sale) (string, error)
	DeleteSale(ctx context.Context, id string) error
	Sale(ctx context.Context, id string) (models.Sale, error)

	PhoneTypes(ctx context.Context) (models.PhoneTypes, error)
	AddPhoneType(ctx context.Context, brand, model string) error
	DeletePhoneType(ctx context.Context, brand, model string) error
	AccessoryCategories(ctx context.Context) ([]models.AccessoryCategory, error)
	AddAccessoryCategory(ctx context.Context, c models.AccessoryCategory) error
	DeleteAccessoryCategory(ctx context.Context, key string) error

	CurrentUser() (models.User, bool)
	SetCurrentUser(u models.User) error
	Logout() error

	Export(ctx context.Context) ([]byte, error)
	Import(ctx context.Context, data []byte) error
	Stats(ctx context.Context) (service.Stats, error)

	OnPhonesChange(fn func([]models.Phone)) (func(), error)
	OnAccessoriesChange(fn func([]models.Accessory)) (func(), error)
	OnSalesChange(fn func([]models.Sale)) (func(), error)
}

// syncWriter serializes writes from the command loop and watch callbacks.
type syncWriter struct {
	mu sync.Mutex
	w  io.Writer
}

func (w *syncWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.w.Write(p)
}

// Shell is a line-oriented REPL over an Inventory.
type Shell struct {
	inv     Inventory
	prompt  *Prompter
	out     io.Writer
	log     *zap.Logger
	watches []func()
}

// NewShell creates a Shell reading commands from in and writing to out.
func NewShell(inv Inventory, in io.Reader, out io.Writer, log *zap.Logger) *Shell {
	if log == nil {
		log = zap.NewNop()
	}
	w := &syncWriter{w: out}
	return &Shell{
		inv:    inv,
		prompt: NewPrompter(in, w),
		out:    w,
		log:    log,
	}
}

// Run executes commands until "exit", the end of the input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	defer s.stopWatches()

	if s.inv.RemoteEnabled() {
		s.println("Connected to the remote store.")
	} else {
		s.println("Working offline with the local store.")
	}

	for ctx.Err() == nil {
		fmt.Fprint(s.out, Prompt)
		line, ok := s.prompt.Line()
		if !ok {
			break
		}
		args := strings.Fields(line)
		if len(args) == 0 {
			continue
		}
		if args[0] == "exit" || args[0] == "quit" {
			s.println("Bye")
			return nil
		}
		if err := s.exec(ctx, args); err != nil {
			s.log.Debug("command failed", zap.String("command", args[0]), zap.Error(err))
			s.println("Error:", err)
		}
	}
	return s.prompt.sc.Err()
}

func (s *Shell) exec(ctx context.Context, args []string) error {
	switch args[0] {
	case "help":
		s.println(helpText)
	case "list":
		return s.list(ctx, arg(args, 1))
	case "add":
		return s.add(ctx, args[1:])
	case "edit":
		return s.edit(ctx, arg(args, 1), arg(args, 2))
	case "delete":
		return s.delete(ctx, args[1:])
	case "find":
		return s.find(ctx, arg(args, 1), rest(args, 2))
	case "number":
		p, err := s.inv.PhoneByNumber(ctx, rest(args, 1))
		return s.show(p, err)
	case "serial":
		p, err := s.inv.PhoneBySerial(ctx, rest(args, 1))
		return s.show(p, err)
	case "sale":
		sale, err := s.inv.Sale(ctx, arg(args, 1))
		return s.show(sale, err)
	case "login":
		name := rest(args, 1)
		if name == "" {
			s.println("Usage: login <username>")
			return nil
		}
		if err := s.inv.SetCurrentUser(models.User{Username: name}); err != nil {
			return err
		}
		s.println("Logged in as", name)
	case "logout":
		return s.inv.Logout()
	case "whoami":
		u, ok := s.inv.CurrentUser()
		if !ok {
			s.println("Not logged in")
			return nil
		}
		s.println(u.Username)
	case "stats":
		st, err := s.inv.Stats(ctx)
		return s.show(st, err)
	case "export":
		return s.export(ctx, rest(args, 1))
	case "import":
		return s.importFile(ctx, rest(args, 1))
	case "watch":
		return s.watch(arg(args, 1))
	default:
		s.println("Unknown command. Type 'help' for a list of commands.")
	}
	return nil
}

func (s *Shell) list(ctx context.Context, what string) error {
	switch what {
	case "phones":
		phones, err := s.inv.Phones(ctx)
		if s.failed(err) {
			return err
		}
		s.phoneTable(phones)
	case "accessories":
		items, err := s.inv.Accessories(ctx)
		if s.failed(err) {
			return err
		}
		s.accessoryTable(items)
	case "sales":
		sales, err := s.inv.Sales(ctx)
		if s.failed(err) {
			return err
		}
		for _, sale := range sales {
			b, _ := json.Marshal(sale)
			s.println(string(b))
		}
	case "brands":
		types, err := s.inv.PhoneTypes(ctx)
		if s.failed(err) {
			return err
		}
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		for brand, ms := range types {
			fmt.Fprintf(tw, "%s\t%s\n", brand, strings.Join(ms, ", "))
		}
		return tw.Flush()
	case "categories":
		cats, err := s.inv.AccessoryCategories(ctx)
		if s.failed(err) {
			return err
		}
		tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
		for _, c := range cats {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", c.Name, c.LocalizedName, c.Description)
		}
		return tw.Flush()
	default:
		s.println("Usage: list phones|accessories|sales|brands|categories")
	}
	return nil
}

func (s *Shell) add(ctx context.Context, args []string) error {
	var (
		id  string
		err error
	)
	switch arg(args, 0) {
	case "phone":
		id, err = s.inv.AddPhone(ctx, s.prompt.Phone())
	case "accessory":
		id, err = s.inv.AddAccessory(ctx, s.prompt.Accessory())
	case "sale":
		id, err = s.inv.AddSale(ctx, models.Sale{Fields: s.prompt.Fields()})
	case "category":
		if err := s.inv.AddAccessoryCategory(ctx, s.prompt.Category()); err != nil {
			return err
		}
		s.println("Category added")
		return nil
	case "brand":
		if len(args) < 3 {
			s.println("Usage: add brand <brand> <model>")
			return nil
		}
		if err := s.inv.AddPhoneType(ctx, args[1], rest(args, 2)); err != nil {
			return err
		}
		s.println("Phone type added")
		return nil
	default:
		s.println("Usage: add phone|accessory|sale|category|brand")
		return nil
	}
	if err != nil {
		return err
	}
	s.println("Added with id", id)
	return nil
}

func (s *Shell) edit(ctx context.Context, what, id string) error {
	if id == "" {
		s.println("Usage: edit phone|accessory <id>")
		return nil
	}
	var err error
	switch what {
	case "phone":
		err = s.inv.UpdatePhone(ctx, id, s.prompt.Patch(
			"phone_number", "serial_number", "brand", "model", "phone_color",
			"phone_memory", "customer_name", "customer_id", "description"))
	case "accessory":
		err = s.inv.UpdateAccessory(ctx, id, s.prompt.Patch(
			"name", "category", "supplier", "description", "notes"))
	default:
		s.println("Usage: edit phone|accessory <id>")
		return nil
	}
	if err != nil {
		return err
	}
	s.println("Updated", id)
	return nil
}

func (s *Shell) delete(ctx context.Context, args []string) error {
	var err error
	switch arg(args, 0) {
	case "phone":
		err = s.inv.DeletePhone(ctx, arg(args, 1))
	case "accessory":
		err = s.inv.DeleteAccessory(ctx, arg(args, 1))
	case "sale":
		err = s.inv.DeleteSale(ctx, arg(args, 1))
	case "brand":
		if len(args) < 3 {
			s.println("Usage: delete brand <brand> <model>")
			return nil
		}
		err = s.inv.DeletePhoneType(ctx, args[1], rest(args, 2))
	case "category":
		err = s.inv.DeleteAccessoryCategory(ctx, rest(args, 1))
	default:
		s.println("Usage: delete phone|accessory|sale|brand|category ...")
		return nil
	}
	if err != nil {
		return err
	}
	s.println("Deleted")
	return nil
}

func (s *Shell) find(ctx context.Context, what, term string) error {
	switch what {
	case "phones":
		phones, err := s.inv.SearchPhones(ctx, term)
		if err != nil {
			return err
		}
		s.phoneTable(phones)
	case "accessories":
		items, err := s.inv.SearchAccessories(ctx, term)
		if err != nil {
			return err
		}
		s.accessoryTable(items)
	default:
		s.println("Usage: find phones|accessories <term>")
	}
	return nil
}

func (s *Shell) export(ctx context.Context, path string) error {
	if path == "" {
		s.println("Usage: export <file>")
		return nil
	}
	data, err := s.inv.Export(ctx)
	if s.failed(err) {
		return err
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write export: %w", err)
	}
	s.println("Exported to", path)
	return nil
}

func (s *Shell) importFile(ctx context.Context, path string) error {
	if path == "" {
		s.println("Usage: import <file>")
		return nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read import: %w", err)
	}
	if err := s.inv.Import(ctx, data); err != nil {
		return err
	}
	s.println("Imported", path)
	return nil
}

func (s *Shell) watch(what string) error {
	var (
		cancel func()
		err    error
	)
	switch what {
	case models.CollectionPhones:
		cancel, err = s.inv.OnPhonesChange(func(items []models.Phone) {
			fmt.Fprintf(s.out, "\n[phones changed: %d records]\n", len(items))
		})
	case models.CollectionAccessories:
		cancel, err = s.inv.OnAccessoriesChange(func(items []models.Accessory) {
			fmt.Fprintf(s.out, "\n[accessories changed: %d records]\n", len(items))
		})
	case models.CollectionSales:
		cancel, err = s.inv.OnSalesChange(func(items []models.Sale) {
			fmt.Fprintf(s.out, "\n[sales changed: %d records]\n", len(items))
		})
	default:
		s.println("Usage: watch phones|accessories|sales")
		return nil
	}
	if err != nil {
		return err
	}
	s.watches = append(s.watches, cancel)
	s.println("Watching", what)
	return nil
}

func (s *Shell) stopWatches() {
	for _, cancel := range s.watches {
		cancel()
	}
	s.watches = nil
}

// failed reports whether err makes the returned data unusable. Fallback
// errors print a notice and let the caller continue.
func (s *Shell) failed(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, service.ErrFallback) {
		s.println("Warning: remote store unavailable, showing local data")
		return false
	}
	return true
}

func (s *Shell) show(v any, err error) error {
	if s.failed(err) {
		return err
	}
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	s.println(string(b))
	return nil
}

func (s *Shell) phoneTable(phones []models.Phone) {
	if len(phones) == 0 {
		s.println("No phones")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tBRAND\tMODEL\tNUMBER\tSERIAL\tCUSTOMER")
	for _, p := range phones {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			p.ID, p.Brand, p.Model, p.PhoneNumber, p.SerialNumber, p.CustomerName)
	}
	_ = tw.Flush()
}

func (s *Shell) accessoryTable(items []models.Accessory) {
	if len(items) == 0 {
		s.println("No accessories")
		return
	}
	tw := tabwriter.NewWriter(s.out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME\tCATEGORY\tSUPPLIER")
	for _, a := range items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", a.ID, a.Name, a.Category, a.Supplier)
	}
	_ = tw.Flush()
}

func (s *Shell) println(a ...any) {
	fmt.Fprintln(s.out, a...)
}

func arg(args []string, i int) string {
	if i < len(args) {
		return args[i]
	}
	return ""
}

// rest joins the arguments from position i, so names may contain spaces.
func rest(args []string, i int) string {
	if i >= len(args) {
		return ""
	}
	return strings.Join(args[i:], " ")
}
