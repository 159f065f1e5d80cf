package runtime

const helpText = `--- MSlash Help ---
steal <symbol> from <file>.mslash   Import a function or class from another file.
my_func(args)                       Call a function.
class <Name> / endclass             Define a class.
func <name>(args) / endfunc         Define a function or method.
return <value>                      Return a value from a function or method.
{ comment }                         An inline comment.
var <name> = <value>                Assign a value, e.g. var x = my_func(...).
say <message>                       Print a message; "${expr}" interpolates.
input <name>                        Read a line of input into a variable.
math <expression>                   Evaluate an expression and print the result.
if <condition> / else / endif       Conditional block.
loop <count> / endloop              Repeat a block a fixed number of times.
emptyline <count>                   Print empty lines.
pause                               Wait until Enter is pressed.
break                               Stop the script immediately.

--- Data Types ---
List: [item1, item2, ...]
Map:  ("key1": "value1", ...)
Built-ins: str int float bool list dict len type abs round range
---------------------
`
