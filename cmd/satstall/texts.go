// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

package main

import "fmt"

// spicyText picks between the polite and the cheeky variant of a message.
// The edgy tone is the default; SPICY_MODE=false turns it off.
func (e *engine) spicyText(nice, edgy string) string {
	if e.spicy {
		return edgy
	}
	return nice
}

func (e *engine) textWelcome() string {
	return e.spicyText(
		"Welcome to the shop! Pick a category below.",
		"Well, well. Look who finally showed up. Pick a category before I change my mind.",
	)
}

func (e *engine) textNoItems() string {
	return e.spicyText(
		"Nothing in this category yet.",
		"Empty. Like your wallet after you buy everything else here.",
	)
}

func (e *engine) textNoPending() string {
	return e.spicyText(
		"You have no pending orders. Pick an item first.",
		"Confirm what, exactly? You haven't ordered anything. Pick an item first.",
	)
}

func (e *engine) textSendAfterPay() string {
	return e.spicyText(
		"After paying, send /confirm to check your payment.",
		"Pay up, then hit /confirm. The blockchain waits for no one.",
	)
}

func (e *engine) textNotConfirmed() string {
	return e.spicyText(
		"Payment not confirmed yet. Try again in a few minutes.",
		"Not confirmed yet. Miners are slow, not me. Try again in a few minutes.",
	)
}

func (e *engine) textCheckFail() string {
	return e.spicyText(
		"Could not check the payment right now. Try again later.",
		"The payment check fell over. Not your fault, probably. Try again later.",
	)
}

func (e *engine) textFileMissing() string {
	return e.spicyText(
		"Payment received, but the file is unavailable. Contact support.",
		"You paid, and now the file has vanished. Awkward. Contact support, they owe you.",
	)
}

func (e *engine) textAlreadyDelivered() string {
	return e.spicyText(
		"This order was already delivered. Check the chat above for your file.",
		"Already delivered. Scroll up, it's right there.",
	)
}

func (e *engine) textNotAdmin() string {
	return e.spicyText(
		"This command is for admins only.",
		"Nice try. Admins only.",
	)
}

func (e *engine) textItemGone() string {
	return e.spicyText(
		"That item is no longer available.",
		"Gone. Sold out or deleted, either way you snoozed.",
	)
}

func (e *engine) textAddressFail() string {
	return e.spicyText(
		"Could not create a payment address. Try again later.",
		"The payment gateway ghosted us. Try again later.",
	)
}

func (e *engine) textDeliveredCaption(itemName string) string {
	return fmt.Sprintf("%s\n%s", itemName, e.spicyText(
		"Payment confirmed. Enjoy!",
		"Payment confirmed. Pleasure doing business with you.",
	))
}

func (e *engine) textConfirmedCaption(itemName string) string {
	return fmt.Sprintf("%s\n%s", itemName, e.spicyText(
		"Your payment just confirmed. Here is your item.",
		"The blockchain says you're good. Here's your loot.",
	))
}
