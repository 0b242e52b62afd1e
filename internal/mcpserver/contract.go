package mcpserver

// BoardFormatContract describes the board document format and the filter
// expression language for LLM consumers working with the board tools.
const BoardFormatContract = `# Tavla Board Format Contract

The board is a single JSON document with four lanes, always serialized
in this order: ` + "`todo`" + `, ` + "`in-progress`" + `, ` + "`testing`" + `, ` + "`done`" + `.

## Structure

` + "```" + `json
{
  "todo": [
    {
      "id": "1",
      "title": "Fix login crash",
      "type": "bug",
      "prio": 5,
      "category": "auth",
      "assignedTo": { "name": "Alice" },
      "description": { "content": "Steps to reproduce...", "mime": "text/markdown" },
      "references": ["2"],
      "creation_time": "2025-01-20T10:00:00Z"
    }
  ],
  "in-progress": [],
  "testing": [],
  "done": []
}
` + "```" + `

## Rules

1. **Card ids** are decimal strings assigned by the service; never invent
   or reuse them. New cards get the highest existing id plus one.
2. **Title is required** and must be non-blank.
3. **Type** is ` + "`\"\"`" + ` (plain note), ` + "`\"bug\"`" + `, or ` + "`\"emergency\"`" + `.
4. **Prio** is a non-negative integer; higher sorts first within a lane.
5. **References** hold ids of related cards. Deleting a card removes its
   id from every other card's references.
6. Each card lives in exactly one lane.

## Filter expressions

Tools and the HTTP API accept boolean filter expressions over card
fields. Available identifiers:

- ` + "`title`" + `, ` + "`description`" + `, ` + "`details`" + `, ` + "`category`" + ` / ` + "`cat`" + `, ` + "`assigned_to`" + `, ` + "`id`" + `, ` + "`type`" + `, ` + "`tag`" + `
- ` + "`prio`" + ` / ` + "`priority`" + ` (number), ` + "`time`" + ` (creation time as epoch seconds)
- booleans: ` + "`is_bug`" + `, ` + "`is_emergency`" + ` / ` + "`is_emerg`" + `, ` + "`is_issue`" + `, ` + "`is_note`" + `, ` + "`is_task`" + `
- constants: ` + "`now`" + `, ` + "`utc`" + `, ` + "`yes`" + `, ` + "`no`" + `

Operators: ` + "`and`" + `/` + "`&&`" + `, ` + "`or`" + `/` + "`||`" + `, ` + "`not`" + `/` + "`!`" + `,
comparisons ` + "`== != < <= > >=`" + `, arithmetic ` + "`+ - * / %`" + `.
Functions: ` + "`str`" + `, ` + "`trim`" + `, ` + "`lower`" + `, ` + "`upper`" + `, ` + "`normalize`" + `,
` + "`float`" + `, ` + "`int`" + `, ` + "`all(needle, haystack...)`" + `, ` + "`any(needle, haystack...)`" + `.

Examples:

- ` + "`is_bug and prio >= 5`" + `
- ` + "`any('auth', title, description, cat)`" + `
- ` + "`type == 'emergency' or prio > 9`" + `
`
