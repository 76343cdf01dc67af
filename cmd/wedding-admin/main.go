package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"wedding-site/internal/config"
	"wedding-site/internal/logging"
	"wedding-site/internal/models"
	"wedding-site/internal/storage"
	"wedding-site/internal/whatsapp"
)

const timeLayout = "2006-01-02 15:04:05"

type console struct {
	ctx     context.Context
	scanner *bufio.Scanner
	store   storage.Store
	inviter *whatsapp.Inviter
}

func main() {
	fmt.Println("🎉 Wedding Site Admin")
	fmt.Println("=====================")

	cfg, err := config.LoadConfig()
	if err != nil {
		fmt.Printf("Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	log := logging.New(cfg.LogLevel, cfg.LogFormat)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, err := storage.Open(cfg.Store, cfg.HTTPTimeout, log)
	if err != nil {
		fmt.Printf("Error initializing storage: %v\n", err)
		os.Exit(1)
	}
	defer store.Close()

	wa, err := whatsapp.NewService(ctx, whatsapp.Config{DataDir: cfg.WhatsAppDataDir}, log)
	if err != nil {
		fmt.Printf("Error initializing WhatsApp service: %v\n", err)
		os.Exit(1)
	}

	inviter := whatsapp.NewInviter(wa, whatsapp.Details{
		BrideName: cfg.Content.Couple.Bride.Name,
		GroomName: cfg.Content.Couple.Groom.Name,
		Date:      cfg.WeddingDate,
		Location:  cfg.WeddingLocation,
		SiteURL:   cfg.PublicURL,
	})
	wa.SetMessageHandler(inviter.HandleReply)

	fmt.Println("Connecting to WhatsApp...")
	if err := wa.Connect(ctx); err != nil {
		fmt.Printf("Error connecting to WhatsApp: %v\n", err)
		os.Exit(1)
	}
	defer wa.Disconnect()
	fmt.Println("\n✅ Connected to WhatsApp!")
	fmt.Println("Invited guests who reply get a link to the RSVP form.")

	c := &console{ctx: ctx, scanner: bufio.NewScanner(os.Stdin), store: store, inviter: inviter}
	done := make(chan struct{})
	go func() {
		c.run()
		close(done)
	}()

	select {
	case <-ctx.Done():
		fmt.Println("\n\nShutting down...")
	case <-done:
	}
	fmt.Println("Goodbye! 👋")
}

func (c *console) run() {
	for {
		fmt.Println("\nCommands:")
		fmt.Println("  1. View all RSVPs")
		fmt.Println("  2. View RSVPs by status")
		fmt.Println("  3. View wishes")
		fmt.Println("  4. Send invitation")
		fmt.Println("  5. View invited guests")
		fmt.Println("  6. Exit")
		fmt.Print("\nEnter command (1-6): ")

		if !c.scanner.Scan() {
			return
		}

		switch strings.TrimSpace(c.scanner.Text()) {
		case "1":
			c.viewRSVPs("")
		case "2":
			c.viewRSVPsByStatus()
		case "3":
			c.viewWishes()
		case "4":
			c.sendInvitation()
		case "5":
			c.viewInvited()
		case "6":
			fmt.Println("Exiting...")
			return
		default:
			fmt.Println("Invalid command. Please try again.")
		}
	}
}

func (c *console) prompt(label string) (string, bool) {
	fmt.Print(label)
	if !c.scanner.Scan() {
		return "", false
	}
	return strings.TrimSpace(c.scanner.Text()), true
}

func (c *console) viewRSVPs(status models.RSVPStatus) {
	rows, err := c.store.ListRSVPs(c.ctx)
	if err != nil {
		fmt.Printf("❌ Error loading RSVPs: %v\n", err)
		return
	}
	if status != "" {
		filtered := rows[:0]
		for _, r := range rows {
			if r.Status() == status {
				filtered = append(filtered, r)
			}
		}
		rows = filtered
	}

	if len(rows) == 0 {
		if status != "" {
			fmt.Printf("\nNo RSVPs with status '%s'.\n", status)
		} else {
			fmt.Println("\nNo RSVPs found.")
		}
		return
	}

	guests := 0
	for _, r := range rows {
		if r.Attending {
			guests += r.Guests
		}
	}
	if status != "" {
		fmt.Printf("\n📋 RSVPs with status '%s' (%d total):\n", status, len(rows))
	} else {
		fmt.Printf("\n📋 All RSVPs (%d total, %d attending guests):\n", len(rows), guests)
	}
	fmt.Println(strings.Repeat("-", 60))
	for _, r := range rows {
		fmt.Printf("Name: %s\n", r.Name)
		fmt.Printf("Email: %s\n", r.Email)
		fmt.Printf("Status: %s\n", r.Status())
		if r.Attending {
			fmt.Printf("Guests: %d\n", r.Guests)
		}
		if r.Message != "" {
			fmt.Printf("Message: %s\n", r.Message)
		}
		if !r.CreatedAt.IsZero() {
			fmt.Printf("RSVP Date: %s\n", r.CreatedAt.Local().Format(timeLayout))
		}
		fmt.Println(strings.Repeat("-", 60))
	}
}

func (c *console) viewRSVPsByStatus() {
	fmt.Println("\nSelect status:")
	fmt.Println("  1. Accepted")
	fmt.Println("  2. Declined")
	choice, ok := c.prompt("Enter choice (1-2): ")
	if !ok {
		return
	}

	switch choice {
	case "1":
		c.viewRSVPs(models.RSVPAccepted)
	case "2":
		c.viewRSVPs(models.RSVPDeclined)
	default:
		fmt.Println("Invalid choice.")
	}
}

func (c *console) viewWishes() {
	list, err := c.store.ListWishes(c.ctx)
	if err != nil {
		fmt.Printf("❌ Error loading wishes: %v\n", err)
		return
	}
	if len(list) == 0 {
		fmt.Println("\nNo wishes yet.")
		return
	}

	fmt.Printf("\n💌 Wishes (%d total):\n", len(list))
	fmt.Println(strings.Repeat("-", 60))
	for _, w := range list {
		fmt.Printf("%s (%s) ❤ %d\n", w.Name, w.CreatedAt.Local().Format(timeLayout), w.Likes)
		fmt.Printf("%s\n", w.Message)
		fmt.Println(strings.Repeat("-", 60))
	}
}

func (c *console) sendInvitation() {
	name, ok := c.prompt("Enter guest name: ")
	if !ok {
		return
	}
	phone, ok := c.prompt("Enter phone number (with country code, e.g., 1234567890): ")
	if !ok {
		return
	}

	fmt.Printf("\nSending invitation to %s (%s)...\n", name, phone)
	if err := c.inviter.SendInvitation(c.ctx, phone, name); err != nil {
		fmt.Printf("❌ Error sending invitation: %v\n", err)
		return
	}
	fmt.Printf("✅ Invitation sent successfully!\n")
}

func (c *console) viewInvited() {
	guests := c.inviter.Invited()
	if len(guests) == 0 {
		fmt.Println("\nNo invitations sent in this session.")
		return
	}

	fmt.Printf("\n📨 Invited guests (%d total):\n", len(guests))
	fmt.Println(strings.Repeat("-", 60))
	for _, g := range guests {
		fmt.Printf("Name: %s\n", g.Name)
		fmt.Printf("Phone: %s\n", g.Phone)
		fmt.Printf("Reply: %s\n", replyLabel(g.Reply))
		fmt.Println(strings.Repeat("-", 60))
	}
}

func replyLabel(r whatsapp.Reply) string {
	switch r {
	case whatsapp.ReplyAccept:
		return "coming"
	case whatsapp.ReplyDecline:
		return "not coming"
	}
	return "no reply"
}
