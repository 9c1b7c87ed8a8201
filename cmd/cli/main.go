package main

import (
	"bufio"
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"drinkpass/internal/client"
	"drinkpass/internal/config"
	"drinkpass/internal/gateway"
	"drinkpass/internal/store"
)

// Host de terminal para el núcleo de orquestación: hace de capa de vista
// contra un backend real o de desarrollo.
func main() {
	ctx := context.Background()
	reader := bufio.NewReader(os.Stdin)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal(err)
	}

	logger := zap.NewExample()
	defer logger.Sync()

	fallback, err := store.NewFileFavoriteStore(cfg.FavoritesPath)
	if err != nil {
		log.Fatal(err)
	}

	gw := gateway.NewClient(cfg.APIBaseURL, logger)
	state := client.NewAppState()
	sessions := client.NewSessionService(logger, gw, state, fallback)
	favorites := client.NewFavoriteService(logger, gw, state, fallback, sessions)
	coupons := client.NewCouponService(logger, gw, state, client.NewLogEffects(logger))

	if sessions.Resume(ctx) {
		fmt.Println("session resumed")
	}
	refreshShops(ctx, gw, state, favorites)

	fmt.Println("commands: login, otp, resend, back, logout, shops, fav <n>, open <n>, use <n>, staff, confirm, cancel, quit")
	for {
		fmt.Print("> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			return
		}
		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}
		cmd, arg := fields[0], ""
		if len(fields) > 1 {
			arg = fields[1]
		}

		switch cmd {
		case "quit":
			return
		case "login":
			email := prompt(reader, "email: ")
			password := prompt(reader, "password: ")
			if err := sessions.SubmitPassword(ctx, email, password); err != nil {
				fmt.Println(client.UserMessage(err))
				continue
			}
			fmt.Println("otp sent, use 'otp' to verify")
		case "otp":
			code := prompt(reader, "code: ")
			dest, err := sessions.SubmitOTP(ctx, code)
			if err != nil {
				fmt.Println(client.UserMessage(err))
				continue
			}
			fmt.Printf("logged in, landing on %s\n", dest)
			refreshShops(ctx, gw, state, favorites)
		case "resend":
			if err := sessions.ResendOTP(ctx); err != nil {
				fmt.Println(client.UserMessage(err))
			}
		case "back":
			sessions.Cancel()
		case "logout":
			sessions.Logout(ctx)
			refreshShops(ctx, gw, state, favorites)
			fmt.Println("logged out")
		case "shops":
			for i, shop := range state.VisibleShops() {
				marker := " "
				if shop.IsFavorite {
					marker = "*"
				}
				fmt.Printf("%2d %s %s (%s/%s)\n", i+1, marker, shop.Name, shop.Area, shop.Genre)
			}
		case "fav":
			shop, ok := shopByIndex(state, arg)
			if !ok {
				fmt.Println("unknown shop")
				continue
			}
			if err := favorites.Toggle(ctx, shop.ID); err != nil {
				fmt.Println(client.UserMessage(err))
			}
		case "open":
			shop, ok := shopByIndex(state, arg)
			if !ok {
				fmt.Println("unknown shop")
				continue
			}
			state.SetScreen(client.ScreenShopDetail, shop.ID)
			if err := coupons.OpenList(ctx, shop.ID); err != nil {
				fmt.Println(client.UserMessage(err))
				continue
			}
			for i, c := range coupons.Coupons() {
				fmt.Printf("%2d %s (%s)\n", i+1, c.Title, c.DrinkType)
			}
			if coupons.UsedToday() {
				fmt.Println("already used a coupon here today")
			}
		case "use":
			list := coupons.Coupons()
			idx, ok := parseIndex(arg, len(list))
			if !ok {
				fmt.Println("unknown coupon")
				continue
			}
			if err := coupons.UseCoupon(list[idx].ID); err != nil {
				fmt.Println(client.UserMessage(err))
				continue
			}
			fmt.Println("confirm screen; 'staff' to show, 'cancel' to go back")
		case "staff":
			coupons.ShowToStaff()
			fmt.Println("showing to staff; 'confirm' to redeem")
		case "confirm":
			if err := coupons.Confirm(ctx); err != nil {
				fmt.Println(client.UserMessage(err))
				continue
			}
			fmt.Println("redeemed, enjoy")
		case "cancel":
			coupons.Cancel(ctx)
		default:
			fmt.Println("unknown command")
		}
	}
}

func prompt(reader *bufio.Reader, label string) string {
	fmt.Print(label)
	line, _ := reader.ReadString('\n')
	return strings.TrimSpace(line)
}

func refreshShops(ctx context.Context, gw *gateway.Client, state *client.AppState, favorites *client.FavoriteService) {
	shops, err := gw.ListShops(ctx)
	if err != nil {
		fmt.Println(client.UserMessage(err))
		return
	}
	state.SetShops(shops)
	if !state.Authenticated() {
		favorites.ApplyLocalFavorites()
	}
}

func shopByIndex(state *client.AppState, arg string) (shop struct {
	ID   string
	Name string
}, ok bool) {
	visible := state.VisibleShops()
	idx, valid := parseIndex(arg, len(visible))
	if !valid {
		return shop, false
	}
	shop.ID = visible[idx].ID
	shop.Name = visible[idx].Name
	return shop, true
}

func parseIndex(arg string, size int) (int, bool) {
	var idx int
	if _, err := fmt.Sscanf(arg, "%d", &idx); err != nil {
		return 0, false
	}
	if idx < 1 || idx > size {
		return 0, false
	}
	return idx - 1, true
}
