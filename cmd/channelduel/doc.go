// Command channelduel administers and inspects the duel database: top
// and winrate rankings, catalog seeding, deathmatch run management, and
// configuration helpers.
package main
