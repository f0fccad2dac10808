// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package catalog

// Built-in catalog used when the documents are absent. The shop starts
// sellable out of the box; the admin replaces these with /additem and
// /delitem.

func seedCategories(doc *categoriesDoc) {
	doc.Categories = []Category{
		{Key: "cards", Items: []string{"item1", "item3", "item7"}},
		{Key: "tutorials", Items: []string{"item2", "item5", "item6", "item9"}},
		{Key: "pages", Items: []string{"item4", "item8", "item10"}},
	}
}

func seedItems(doc *itemsDoc) {
	doc.Items = map[string]Item{
		"item1":  {Name: "Retro Art Card Pack", PriceBTC: 0.0001, FilePath: "items/cards.pdf"},
		"item2":  {Name: "Cold Storage Tutorial", PriceBTC: 0.0002, FilePath: "items/coldstorage.zip"},
		"item3":  {Name: "Blackjack Strategy Card", PriceBTC: 0.0003, FilePath: "items/blackjack.pdf"},
		"item4":  {Name: "Typewriter Font Pages", PriceBTC: 0.00015, FilePath: "items/fontpages.pdf"},
		"item5":  {Name: "Lightning Node Masterclass", PriceBTC: 0.0005, FilePath: "items/lightning.mp4"},
		"item6":  {Name: "Node Operator Manual", PriceBTC: 0.00025, FilePath: "items/nodemanual.pdf"},
		"item7":  {Name: "Pixel Sticker Collection", PriceBTC: 0.0004, FilePath: "items/stickers.zip"},
		"item8":  {Name: "Zine Pages Vol.1", PriceBTC: 0.00012, FilePath: "items/zine1.pdf"},
		"item9":  {Name: "Self-Hosting Tips", PriceBTC: 0.00035, FilePath: "items/selfhosting.pdf"},
		"item10": {Name: "Workshop Blueprints", PriceBTC: 0.0006, FilePath: "items/blueprints.pdf"},
	}
}
