package app

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"text/tabwriter"

	apperrors "github.com/xmenbro/AutoRepairCenter/pkg/errors"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/cartstore"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/domain"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/format"
	"github.com/xmenbro/AutoRepairCenter/services/storefront/internal/identity"
)

// Usage is printed for unknown commands.
const Usage = `usage: storefront <command> [args]

commands:
  cart                       show the cart
  add <productId> [qty]      add a catalog product (qty defaults to 1)
  remove <productId>         remove a product
  update <productId> <qty>   set a quantity (0 or less removes)
  clear                      empty the cart
  count                      print the number of items
  login <userId> [role]      sign in
  logout                     sign out
  catalog                    list products`

type command struct {
	minArgs, maxArgs int
	run              func(a *App, ctx context.Context, args []string) error
}

var commands = map[string]command{
	"cart":    {0, 0, (*App).cmdCart},
	"add":     {1, 2, (*App).cmdAdd},
	"remove":  {1, 1, (*App).cmdRemove},
	"update":  {2, 2, (*App).cmdUpdate},
	"clear":   {0, 0, (*App).cmdClear},
	"count":   {0, 0, (*App).cmdCount},
	"login":   {1, 2, (*App).cmdLogin},
	"logout":  {0, 0, (*App).cmdLogout},
	"catalog": {0, 0, (*App).cmdCatalog},
}

// Run executes one CLI command.
func (a *App) Run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return apperrors.InvalidInput(Usage)
	}
	cmd, ok := commands[args[0]]
	if !ok {
		return apperrors.InvalidInput(fmt.Sprintf("unknown command %q\n%s", args[0], Usage))
	}
	rest := args[1:]
	if len(rest) < cmd.minArgs || len(rest) > cmd.maxArgs {
		return apperrors.InvalidInput(fmt.Sprintf("wrong number of arguments for %q\n%s", args[0], Usage))
	}
	return cmd.run(a, ctx, rest)
}

// --- Cart commands ---

func (a *App) cmdCart(ctx context.Context, _ []string) error {
	res, err := a.store.GetCart(ctx)
	if err != nil {
		return err
	}
	return a.printCart(res)
}

func (a *App) cmdAdd(ctx context.Context, args []string) error {
	qty := 1
	if len(args) == 2 {
		n, err := parseQuantity(args[1])
		if err != nil {
			return err
		}
		qty = n
	}

	cat, err := a.catalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}
	p, err := cat.Product(domain.ParseID(args[0]))
	if err != nil {
		return err
	}

	res, err := a.store.AddItem(ctx, p, qty)
	if err != nil {
		return err
	}
	return a.printStatus(res)
}

func (a *App) cmdRemove(ctx context.Context, args []string) error {
	res, err := a.store.RemoveItem(ctx, domain.ParseID(args[0]))
	if err != nil {
		return err
	}
	return a.printStatus(res)
}

func (a *App) cmdUpdate(ctx context.Context, args []string) error {
	qty, err := parseQuantity(args[1])
	if err != nil {
		return err
	}
	res, err := a.store.UpdateQuantity(ctx, domain.ParseID(args[0]), qty)
	if err != nil {
		return err
	}
	return a.printStatus(res)
}

func (a *App) cmdClear(ctx context.Context, _ []string) error {
	res, err := a.store.ClearCart(ctx)
	if err != nil {
		return err
	}
	return a.printStatus(res)
}

func (a *App) cmdCount(ctx context.Context, _ []string) error {
	n, err := a.store.Count(ctx)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(a.out, n)
	return err
}

// --- Identity commands ---

func (a *App) cmdLogin(ctx context.Context, args []string) error {
	u := identity.User{ID: domain.ParseID(args[0]), Role: "client"}
	if len(args) == 2 {
		u.Role = args[1]
	}
	if err := a.identity.SignIn(ctx, u); err != nil {
		return err
	}
	_, err := fmt.Fprintf(a.out, "signed in as %s (%s)\n", u.ID, u.Role)
	return err
}

func (a *App) cmdLogout(ctx context.Context, _ []string) error {
	if err := a.identity.SignOut(ctx); err != nil {
		return err
	}
	_, err := fmt.Fprintln(a.out, "signed out")
	return err
}

// --- Catalog ---

func (a *App) cmdCatalog(ctx context.Context, _ []string) error {
	cat, err := a.catalog(ctx)
	if err != nil {
		return fmt.Errorf("load catalog: %w", err)
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tBRAND\tPRICE\tAVAILABILITY")
	for _, p := range cat.Products() {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", p.ID, p.Title, p.Brand, format.Rub(p.Price), p.Availability)
	}
	return tw.Flush()
}

// --- Output ---

func (a *App) printCart(res *cartstore.Result) error {
	if len(res.Lines) == 0 {
		_, err := fmt.Fprintln(a.out, "cart is empty")
		return err
	}

	tw := tabwriter.NewWriter(a.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tBRAND\tPRICE\tQTY\tSUBTOTAL")
	for _, l := range res.Lines {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d\t%s\n",
			l.ID, l.Title, l.Brand, format.Rub(l.Price), l.Quantity, format.Rub(l.Subtotal()))
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	_, err := fmt.Fprintf(a.out, "\nitems: %d\ntotal: %s\ndelivery: %s\nsource: %s\n",
		res.LineCount, format.Rub(res.Total), format.DeliveryWindow(a.now()), res.Source)
	return err
}

func (a *App) printStatus(res *cartstore.Result) error {
	_, err := fmt.Fprintf(a.out, "%s (items: %d, total: %s)\n", res.Message, res.LineCount, format.Rub(res.Total))
	return err
}

func parseQuantity(s string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, apperrors.InvalidInput(fmt.Sprintf("quantity must be an integer, got %q", s))
	}
	return n, nil
}
