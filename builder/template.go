package dummybuilder

import (
	"strconv"
	"text/template"
)

// scriptTemplate is the placeholder ES-DE launches through the Python
// command. It downloads the real file from the archive item, unpacks
// .zip/.7z archives, lifts a file nested one directory deep into the system
// directory and removes itself once done.
var scriptTemplate = template.Must(template.New("placeholder").Funcs(template.FuncMap{
	"py": strconv.Quote,
}).Parse(`import logging
import shutil
import sys
import zipfile
from pathlib import Path

import py7zr
from internetarchive import get_item

title = {{py .Title}}
emulator = {{py .System}}
identifier = {{py .Identifier}}
file_path = Path({{py .SystemDir}}).expanduser()
log_dir = Path(__file__).resolve().parent.parent

logging.basicConfig(
    filename=str(log_dir / 'liblog.log'),
    format='%(asctime)s %(levelname)-8s %(message)s',
    level=logging.INFO,
    datefmt='%Y-%m-%d %H:%M:%S')


def report(message, level=logging.INFO):
    print(message)
    logging.log(level, message)


report('Initiating download request for ' + title)

item = get_item(identifier)
item.get_file(title).download(destdir=str(file_path), verbose=True, retries=3)

local_filename = file_path / title
if not local_filename.is_file():
    report('Download did not produce ' + str(local_filename), logging.ERROR)
    sys.exit(1)

report('Successfully downloaded ' + title)

if local_filename.suffix.lower() == '.zip':
    with zipfile.ZipFile(local_filename, 'r') as f:
        f.extractall(file_path)
    local_filename.unlink()
    report('Successfully extracted ' + title)
elif local_filename.suffix.lower() == '.7z':
    with py7zr.SevenZipFile(local_filename, mode='r') as f:
        f.extractall(path=file_path)
    local_filename.unlink()
    report('Successfully extracted ' + title)
elif local_filename.parent != file_path:
    nested = local_filename.parent
    shutil.move(str(local_filename), str(file_path / local_filename.name))
    if not any(nested.iterdir()):
        nested.rmdir()
    report('Successfully moved ' + title)

Path(__file__).unlink()
`))

// scriptData is what the template is rendered with.
type scriptData struct {
	Title      string
	System     string
	Identifier string
	SystemDir  string
}
