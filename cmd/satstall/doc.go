// © 2025 Satstall Authors. All rights reserved.
// Use of this source code is governed by the ISC
// license that can be found in the LICENSE.md file.

/*
Satstall is a Telegram storefront bot that sells digital files for Bitcoin.

Buyers browse a small catalog through inline keyboards, receive a freshly
issued payment address with a QR code for each purchase, and get the file
delivered in chat once the payment has two confirmations. Confirmation
arrives either from a Blockonomics HTTP callback or from the buyer sending
the /confirm command.

# Configuration

Satstall is configured via environment variables, optionally loaded from a
.env file in the current directory:

  - TELEGRAM_TOKEN: Telegram Bot API token (required)
  - BLOCKONOMICS_API_KEY: Blockonomics API key used to issue addresses
  - TELEGRAM_WEBHOOK_SECRET: secret expected in the X-Telegram-Bot-Api-Secret-Token header
  - BLOCKONOMICS_CALLBACK_SECRET: secret expected in the callback query string
  - ADMIN_USER_ID: Telegram user ID allowed to run admin commands
  - WELCOME_VIDEO: optional URL of a video shown on /start
  - SPICY_MODE: set to false for polite replies (default true)
  - HOST: public hostname used to register the Telegram webhook with -prod
  - ADDR: listen address (default localhost:3000)
  - CATEGORIES_FILE, ITEMS_FILE, ORDERS_FILE: paths of the JSON state files

# Serving

  - POST /telegram: Telegram webhook updates
  - GET /gateway/callback: Blockonomics payment notifications
  - GET /health: health check
*/
package main
