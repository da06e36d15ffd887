// Command invoicebuilder wires the storage and service layers together and
// exposes the dataset operations for operating on a store outside the UI:
//
//	invoicebuilder info            summarize the store
//	invoicebuilder export [file]   write the dataset JSON (stdout by default)
//	invoicebuilder import <file>   replace the store with a dataset JSON
//	invoicebuilder clear           wipe the store
package main

import (
	"fmt"
	"log"
	"os"

	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/config"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/services"
	"github.com/ranjeetvdev/ramcarpenterinvoicebuilder/internal/storage"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	cfg := config.Load()
	kv, err := storage.Open(cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("open storage: %v", err)
	}
	repo := storage.NewRepository(kv)
	clients := services.NewClientService(repo)
	invoices := services.NewInvoiceService(repo)

	switch os.Args[1] {
	case "info":
		info := repo.Info()
		fmt.Printf("available: %v\nclients:   %d\ninvoices:  %d\nbytes:     %d\n",
			info.Available, info.Clients, info.Invoices, info.BytesUsed)
		cs, err := clients.Stats()
		if err != nil {
			log.Fatalf("client stats: %v", err)
		}
		is, err := invoices.Stats()
		if err != nil {
			log.Fatalf("invoice stats: %v", err)
		}
		fmt.Printf("clients without invoices: %d, incomplete: %d\n", cs.WithoutInvoices, cs.Incomplete)
		fmt.Printf("invoices draft/issued/paid: %d/%d/%d, outstanding: %.2f\n",
			is.Draft, is.Issued, is.Paid, is.Outstanding)
	case "export":
		doc, err := repo.Export()
		if err != nil {
			log.Fatalf("export: %v", err)
		}
		if len(os.Args) > 2 {
			if err := os.WriteFile(os.Args[2], []byte(doc), 0o644); err != nil {
				log.Fatalf("write %s: %v", os.Args[2], err)
			}
		} else {
			fmt.Println(doc)
		}
	case "import":
		if len(os.Args) < 3 {
			usage()
			os.Exit(2)
		}
		doc, err := os.ReadFile(os.Args[2])
		if err != nil {
			log.Fatalf("read %s: %v", os.Args[2], err)
		}
		if err := repo.Import(string(doc)); err != nil {
			log.Fatalf("import: %v", err)
		}
		log.Printf("imported %s", os.Args[2])
	case "clear":
		if err := repo.ClearAll(); err != nil {
			log.Fatalf("clear: %v", err)
		}
		log.Print("store cleared")
	default:
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, "usage: invoicebuilder <info|export [file]|import <file>|clear>")
}
